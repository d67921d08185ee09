package util

import "sync/atomic"

// ProgressFunc recebe o progresso global da operação (0 a 100).
// Os valores reportados são sempre monotônicos não-decrescentes.
type ProgressFunc func(percent int32)

// StageReporter mapeia a fração concluída de uma etapa do pipeline
// para uma fatia do progresso global (ex: extração de superfície = 0 a 50).
// É seguro para uso concorrente: reports fora de ordem nunca regridem o valor.
type StageReporter struct {
	sink ProgressFunc
	base int32
	span int32
	last atomic.Int32
}

// NewStageReporter cria um reporter que traduz [0.0, 1.0] para [base, base+span].
func NewStageReporter(sink ProgressFunc, base, span int32) *StageReporter {
	r := &StageReporter{sink: sink, base: base, span: span}
	r.last.Store(-1)
	return r
}

// Report publica a fração concluída da etapa (clampada para [0, 1]).
func (r *StageReporter) Report(fraction float64) {
	if r == nil || r.sink == nil {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	pct := r.base + int32(float64(r.span)*fraction)

	// Só repassa se avançou; CAS evita regressão com reports concorrentes
	for {
		prev := r.last.Load()
		if pct <= prev {
			return
		}
		if r.last.CompareAndSwap(prev, pct) {
			r.sink(pct)
			return
		}
	}
}

// Done publica o fim da etapa (fração 1.0).
func (r *StageReporter) Done() {
	r.Report(1.0)
}

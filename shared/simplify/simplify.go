// Package simplify implementa decimação de malha por quadrics de erro
// (QEM): colapsos de aresta aplicados em lotes paralelos até a malha
// atingir a contagem de triângulos desejada. O pipeline opera sobre
// cópias de trabalho e nunca muta a malha de entrada.
package simplify

import (
	"context"
	"log"
	"time"

	"TomoVision/shared/geometry"
	"TomoVision/shared/util"
)

// Outcome descreve como uma execução de simplificação terminou.
type Outcome int

const (
	// OutcomeDone: alvo de triângulos alcançado.
	OutcomeDone Outcome = iota
	// OutcomeNoop: a malha já estava no alvo; nada foi colapsado.
	OutcomeNoop
	// OutcomeStalled: um lote aplicou colapsos de menos; a malha não
	// comporta mais reduções úteis e o resultado parcial foi devolvido.
	OutcomeStalled
	// OutcomeBatchCap: limite de lotes atingido antes do alvo.
	OutcomeBatchCap
	// OutcomeCancelled: contexto cancelado; resultado parcial bem-formado.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeNoop:
		return "noop"
	case OutcomeStalled:
		return "stalled"
	case OutcomeBatchCap:
		return "batch-cap"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Options parametriza uma execução de simplificação.
type Options struct {
	// TargetFacets é a contagem de triângulos desejada. Valores maiores ou
	// iguais à contagem atual tornam a execução um no-op (só normais).
	TargetFacets int
	// Workers limita o paralelismo; <= 0 usa runtime.NumCPU.
	Workers int
}

// Run decima a malha até opts.TargetFacets triângulos e devolve uma malha
// nova, compactada e com normais. A entrada nunca é modificada. Uma
// execução cancelada devolve o progresso até o momento com
// OutcomeCancelled; o resultado continua estruturalmente válido.
func Run(ctx context.Context, mesh *geometry.Mesh, opts Options, progress *util.StageReporter) (*geometry.Mesh, Outcome) {
	nt := len(mesh.Triangles)
	if nt == 0 || opts.TargetFacets >= nt {
		out := mesh.Clone()
		ComputeNormals(out)
		progress.Done()
		return out, OutcomeNoop
	}

	start := time.Now()
	rc := newRunContext(mesh, opts.Workers)

	accumulateQuadrics(rc)
	progress.Report(0.1)

	if ctx.Err() != nil {
		return rc.compact(), OutcomeCancelled
	}

	outcome := rc.simplifyLoop(ctx, opts.TargetFacets, func(f float64) {
		progress.Report(0.1 + 0.8*f)
	})

	out := rc.compact()
	progress.Done()

	log.Printf("[Simplify] %d -> %d triângulos (%s) em %v",
		nt, len(out.Triangles), outcome, time.Since(start))
	return out, outcome
}

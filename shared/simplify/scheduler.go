package simplify

import (
	"context"
	"log"
	"sync/atomic"

	"TomoVision/shared/util"
)

const (
	// maxBatches limita o número de rodadas por execução; uma malha
	// patológica termina com resultado parcial em vez de girar indefinidamente.
	maxBatches = 50

	// minBatchTarget é o piso de colapsos por lote: lotes pequenos demais
	// desperdiçam o custo de enumerar e ordenar candidatos.
	minBatchTarget = 10000

	// neededDivisor dimensiona o lote como fração do que ainda falta,
	// para os lotes encolherem conforme a malha se aproxima do alvo.
	neededDivisor = 10

	// prefixFactor: quantos candidatos ordenados considerar por lote, em
	// múltiplos do alvo do lote. A folga absorve colapsos que falham por
	// disputa de vértice sem exigir nova enumeração.
	prefixFactor = 2

	// stallDivisor define a detecção de estagnação: um lote que aplica
	// menos de alvo/stallDivisor colapsos encerra a execução.
	stallDivisor = 10
)

// simplifyLoop roda lotes de colapso até a contagem de triângulos válidos
// atingir target, detectar estagnação, estourar o limite de lotes ou o
// contexto ser cancelado. progress recebe a fração [0,1] do caminho já
// percorrido entre a contagem inicial e o alvo.
func (rc *runContext) simplifyLoop(ctx context.Context, target int, progress func(float64)) Outcome {
	validCount := rc.md.countValid()
	initial := validCount

	for batch := 0; batch < maxBatches; batch++ {
		if ctx.Err() != nil {
			return OutcomeCancelled
		}
		if validCount <= target {
			progress(1)
			return OutcomeDone
		}

		// Cada colapso remove até 2 triângulos; precisamos de pelo menos
		// metade da diferença em colapsos bem-sucedidos.
		needed := (validCount - target + 1) / 2
		batchTarget := util.Max(minBatchTarget, needed/neededDivisor)
		if batchTarget > needed {
			batchTarget = needed
		}

		cands := generateCandidates(rc, validCount, needed)
		if len(cands) == 0 {
			log.Printf("[Simplify] Lote %d sem candidatos, %d triângulos restantes", batch, validCount)
			return OutcomeStalled
		}

		prefix := util.Min(len(cands), batchTarget*prefixFactor)
		partialSortByError(cands, prefix)

		applied := rc.applyBatch(ctx, cands[:prefix], batchTarget)
		if ctx.Err() != nil {
			return OutcomeCancelled
		}

		validCount = rc.md.countValid()
		if initial > target {
			progress(float64(initial-validCount) / float64(initial-target))
		}

		if applied < batchTarget/stallDivisor {
			if validCount <= target {
				return OutcomeDone
			}
			log.Printf("[Simplify] Estagnado no lote %d: %d/%d colapsos, %d triângulos restantes",
				batch, applied, batchTarget, validCount)
			return OutcomeStalled
		}
	}

	if validCount <= target {
		return OutcomeDone
	}
	log.Printf("[Simplify] Limite de %d lotes atingido com %d triângulos restantes", maxBatches, validCount)
	return OutcomeBatchCap
}

// applyBatch tenta aplicar os candidatos do prefixo em paralelo, parando
// assim que successTarget colapsos foram aplicados. Candidatos que perdem
// a disputa pelos vértices são simplesmente pulados; o próximo lote os
// reconsidera com erros recalculados.
func (rc *runContext) applyBatch(ctx context.Context, cands []candidate, successTarget int) int {
	var successes atomic.Int64

	util.ParallelFor(rc.workers, len(cands), func(start, end int) {
		for i := start; i < end; i++ {
			if successes.Load() >= int64(successTarget) {
				return
			}
			// Checagem barata de cancelamento entre colapsos.
			if i%256 == 0 && ctx.Err() != nil {
				return
			}
			if rc.applyCollapse(&cands[i]) {
				successes.Add(1)
			}
		}
	})

	return int(successes.Load())
}

// applyCollapse executa um colapso a←b sob o protocolo de dois locks:
// adquire os dois vértices atomicamente ou desiste sem bloquear. Nunca
// espera por vértices ocupados; a disputa vira um skip barato.
func (rc *runContext) applyCollapse(c *candidate) bool {
	rc.lockGuard.Lock()
	if rc.locked[c.a] || rc.locked[c.b] ||
		rc.verts[c.a].removed || rc.verts[c.b].removed {
		rc.lockGuard.Unlock()
		return false
	}
	rc.locked[c.a] = true
	rc.locked[c.b] = true
	rc.lockGuard.Unlock()

	defer func() {
		rc.lockGuard.Lock()
		rc.locked[c.a] = false
		rc.locked[c.b] = false
		rc.lockGuard.Unlock()
	}()

	va := &rc.verts[c.a]
	vb := &rc.verts[c.b]
	va.pos = c.target
	va.quadric.Accumulate(vb.quadric)
	vb.removed = true

	// Reescreve as referências a b nos triângulos incidentes. Os locks de
	// vértice não cobrem os triângulos: um triângulo {b1, b2, x} é alcançado
	// por colapsos a1←b1 e a2←b2 que não compartilham vértice nenhum. Cada
	// elemento do array plano tem no máximo um escritor (só o dono do lock
	// de b reescreve ocorrências de b), mas a varredura de igualdade e a
	// checagem de degeneração leem slots que outro colapso pode estar
	// escrevendo, então todo acesso a elemento é atômico. Uma leitura que
	// perca a escrita concorrente só adia a invalidação: o outro colapso
	// refaz a checagem com o valor já publicado.
	for _, ti := range rc.refs[c.b] {
		if atomic.LoadUint32(&rc.md.valid[ti]) == 0 {
			continue
		}
		base := int(ti) * 3
		for k := 0; k < 3; k++ {
			if atomic.LoadUint32(&rc.md.tris[base+k]) == c.b {
				atomic.StoreUint32(&rc.md.tris[base+k], c.a)
			}
		}
		i0 := atomic.LoadUint32(&rc.md.tris[base+0])
		i1 := atomic.LoadUint32(&rc.md.tris[base+1])
		i2 := atomic.LoadUint32(&rc.md.tris[base+2])
		if i0 == i1 || i1 == i2 || i0 == i2 {
			atomic.StoreUint32(&rc.md.valid[ti], 0)
		}
	}

	// a herda a adjacência de b; a lista pode conter triângulos já
	// invalidados, filtrados na leitura.
	rc.refs[c.a] = append(rc.refs[c.a], rc.refs[c.b]...)
	rc.refs[c.b] = nil
	return true
}

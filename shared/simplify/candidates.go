package simplify

import (
	"sort"

	"TomoVision/shared/geometry"
	"TomoVision/shared/util"
)

// candidate é um colapso proposto: o vértice b é fundido no vértice a,
// que passa a ocupar a posição target. O erro é a avaliação da quadric
// combinada na posição alvo, já saturado em zero.
type candidate struct {
	a, b   uint32
	target geometry.Vec3
	err    float64
}

// fullEnumThreshold separa a enumeração completa de arestas da amostragem:
// malhas com até este número de triângulos válidos têm todas as arestas
// consideradas; acima disso o custo por lote precisa ficar desacoplado do
// tamanho total, e só uma amostra é visitada.
const fullEnumThreshold = 200000

// sampleFactor multiplica o número de colapsos ainda necessários para
// dimensionar a amostra no modo amostrado.
const sampleFactor = 4

// edgeKey canonicaliza o par de vértices de uma aresta (menor índice nos
// bits altos) para deduplicação, independente da orientação no triângulo.
func edgeKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

// makeCandidate resolve a posição ótima do colapso a←b. Se a quadric
// combinada for singular (sem mínimo único, caso típico de regiões
// planas), a posição recua para o ponto médio da aresta.
func makeCandidate(rc *runContext, a, b uint32) candidate {
	q := rc.verts[a].quadric.Add(rc.verts[b].quadric)
	x, y, z, ok := q.SolveMinimum()
	if !ok {
		pa := rc.verts[a].pos
		pb := rc.verts[b].pos
		x = float64(pa[0]+pb[0]) * 0.5
		y = float64(pa[1]+pb[1]) * 0.5
		z = float64(pa[2]+pb[2]) * 0.5
	}
	err := q.Evaluate(x, y, z)
	if err < 0 {
		err = 0
	}
	return candidate{
		a:      a,
		b:      b,
		target: geometry.Vec3{float32(x), float32(y), float32(z)},
		err:    err,
	}
}

// generateCandidates enumera colapsos candidatos para o próximo lote.
// validCount é a contagem corrente de triângulos válidos, needed o número
// de colapsos que ainda faltam até o alvo.
func generateCandidates(rc *runContext, validCount, needed int) []candidate {
	if validCount <= fullEnumThreshold {
		return enumerateAllEdges(rc)
	}
	return sampleEdges(rc, needed)
}

// enumerateAllEdges visita as três arestas de cada triângulo válido em
// paralelo, com deduplicação local por worker e uma mesclagem global
// sequencial ao final. Arestas duplicadas entre workers produzem o mesmo
// candidato, então a mesclagem descarta repetições sem perda.
func enumerateAllEdges(rc *runContext) []candidate {
	nt := rc.md.triangleCount()
	if nt == 0 {
		return nil
	}
	workers := rc.workers
	if workers <= 0 {
		workers = 1
	}
	if workers > nt {
		workers = nt
	}
	// Mesmo particionamento contíguo do ParallelFor: o slot de saída de
	// cada worker é derivado do início do seu bloco.
	chunk := (nt + workers - 1) / workers
	locals := make([][]candidate, workers)

	util.ParallelFor(workers, nt, func(start, end int) {
		seen := make(map[uint64]struct{}, (end-start)*3)
		out := make([]candidate, 0, (end-start)*3)
		for ti := start; ti < end; ti++ {
			if rc.md.valid[ti] == 0 {
				continue
			}
			base := ti * 3
			for k := 0; k < 3; k++ {
				a := rc.md.tris[base+k]
				b := rc.md.tris[base+(k+1)%3]
				if rc.verts[a].removed || rc.verts[b].removed {
					continue
				}
				key := edgeKey(a, b)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, makeCandidate(rc, a, b))
			}
		}
		locals[start/chunk] = out
	})

	global := make(map[uint64]struct{}, nt*2)
	merged := make([]candidate, 0, nt*2)
	for _, out := range locals {
		for _, c := range out {
			key := edgeKey(c.a, c.b)
			if _, dup := global[key]; dup {
				continue
			}
			global[key] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}

// sampleEdges percorre os triângulos em passo fixo e extrai uma aresta de
// cada visitado, até cerca de sampleFactor×needed candidatos. O custo é
// proporcional à amostra, não ao tamanho da malha.
func sampleEdges(rc *runContext, needed int) []candidate {
	nt := rc.md.triangleCount()
	want := needed * sampleFactor
	if want < 1 {
		want = 1
	}
	stride := nt / want
	if stride < 1 {
		stride = 1
	}

	seen := make(map[uint64]struct{}, want)
	out := make([]candidate, 0, want)
	for ti := 0; ti < nt; ti += stride {
		if rc.md.valid[ti] == 0 {
			continue
		}
		base := ti * 3
		k := ti % 3 // varia a aresta escolhida entre visitas
		a := rc.md.tris[base+k]
		b := rc.md.tris[base+(k+1)%3]
		if rc.verts[a].removed || rc.verts[b].removed {
			continue
		}
		key := edgeKey(a, b)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, makeCandidate(rc, a, b))
	}
	return out
}

// partialSortByError garante que os k candidatos de menor erro ocupem o
// prefixo, ordenados; o restante fica em ordem arbitrária. Quickselect
// iterativo seguido de ordenação apenas do prefixo — lotes grandes nunca
// pagam o sort completo.
func partialSortByError(c []candidate, k int) {
	if k >= len(c) {
		sort.Slice(c, func(i, j int) bool { return c[i].err < c[j].err })
		return
	}
	// Seleciona a posição k: ao final c[:k] só contém elementos <= c[k].
	// A partição de Hoare não fixa o pivô, então o intervalo encolhe até
	// colapsar em k em vez de parar quando o corte coincide.
	lo, hi := 0, len(c)-1
	for lo < hi {
		p := partition(c, lo, hi)
		if k <= p {
			hi = p
		} else {
			lo = p + 1
		}
	}
	prefix := c[:k]
	sort.Slice(prefix, func(i, j int) bool { return prefix[i].err < prefix[j].err })
}

// partition usa mediana-de-três como pivô para evitar o pior caso em
// entradas já parcialmente ordenadas (comuns entre lotes consecutivos).
func partition(c []candidate, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if c[mid].err < c[lo].err {
		c[mid], c[lo] = c[lo], c[mid]
	}
	if c[hi].err < c[lo].err {
		c[hi], c[lo] = c[lo], c[hi]
	}
	if c[hi].err < c[mid].err {
		c[hi], c[mid] = c[mid], c[hi]
	}
	pivot := c[mid].err
	i, j := lo, hi
	for {
		for c[i].err < pivot {
			i++
		}
		for c[j].err > pivot {
			j--
		}
		if i >= j {
			return j
		}
		c[i], c[j] = c[j], c[i]
		i++
		j--
	}
}

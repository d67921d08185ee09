package simplify

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"TomoVision/shared/geometry"
	"TomoVision/shared/util"
)

// gridMesh constrói um plano subdividido n x n no plano XY: (n+1)² vértices
// e 2n² triângulos, todos com winding CCW visto de +Z.
func gridMesh(n int) *geometry.Mesh {
	m := &geometry.Mesh{}
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			m.Vertices = append(m.Vertices, geometry.Vec3{float32(x), float32(y), 0})
		}
	}
	stride := uint32(n + 1)
	for y := uint32(0); y < uint32(n); y++ {
		for x := uint32(0); x < uint32(n); x++ {
			v0 := y*stride + x
			v1 := v0 + 1
			v2 := v0 + stride
			v3 := v2 + 1
			m.Triangles = append(m.Triangles,
				geometry.Triangle{v0, v1, v3},
				geometry.Triangle{v0, v3, v2})
		}
	}
	return m
}

func TestRunNoop(t *testing.T) {
	mesh := gridMesh(4) // 32 triângulos

	out, outcome := Run(context.Background(), mesh, Options{TargetFacets: 32, Workers: 2}, nil)

	if outcome != OutcomeNoop {
		t.Fatalf("outcome = %s, esperado noop", outcome)
	}
	if out.TriangleCount() != 32 {
		t.Errorf("triângulos = %d, esperado 32", out.TriangleCount())
	}
	if len(out.Normals) != out.VertexCount() {
		t.Errorf("noop deveria sair com normais: %d para %d vértices",
			len(out.Normals), out.VertexCount())
	}
	if out == mesh {
		t.Error("Run deveria devolver uma cópia, não a entrada")
	}
}

func TestRunDecimatesGrid(t *testing.T) {
	mesh := gridMesh(24) // 1152 triângulos coplanares
	target := 100

	out, outcome := Run(context.Background(), mesh, Options{TargetFacets: target, Workers: 4}, nil)

	if outcome != OutcomeDone && outcome != OutcomeStalled {
		t.Fatalf("outcome = %s", outcome)
	}
	if out.TriangleCount() >= mesh.TriangleCount() {
		t.Errorf("não reduziu: %d -> %d", mesh.TriangleCount(), out.TriangleCount())
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("malha decimada inválida: %v", err)
	}
	// A entrada permanece intacta
	if mesh.TriangleCount() != 1152 || mesh.VertexCount() != 625 {
		t.Error("Run mutou a malha de entrada")
	}
}

func TestRunCancelled(t *testing.T) {
	mesh := gridMesh(16)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, outcome := Run(ctx, mesh, Options{TargetFacets: 10, Workers: 2}, nil)

	if outcome != OutcomeCancelled {
		t.Fatalf("outcome = %s, esperado cancelled", outcome)
	}
	if out == nil {
		t.Fatal("resultado parcial nil")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("resultado parcial inválido: %v", err)
	}
}

func TestRunEmptyMesh(t *testing.T) {
	out, outcome := Run(context.Background(), &geometry.Mesh{}, Options{TargetFacets: 10}, nil)
	if outcome != OutcomeNoop {
		t.Fatalf("outcome = %s, esperado noop", outcome)
	}
	if out.TriangleCount() != 0 {
		t.Errorf("malha vazia produziu %d triângulos", out.TriangleCount())
	}
}

func TestRunProgressMonotonic(t *testing.T) {
	mesh := gridMesh(20)

	var reports []int32
	progress := util.NewStageReporter(func(p int32) { reports = append(reports, p) }, 0, 100)

	Run(context.Background(), mesh, Options{TargetFacets: 50, Workers: 1}, progress)

	if len(reports) == 0 {
		t.Fatal("nenhum progresso reportado")
	}
	last := int32(-1)
	for _, p := range reports {
		if p < last {
			t.Fatalf("progresso regrediu: %d depois de %d", p, last)
		}
		last = p
	}
	if last != 100 {
		t.Errorf("progresso final = %d, esperado 100", last)
	}
}

func TestEdgeKeyCanonical(t *testing.T) {
	if edgeKey(3, 7) != edgeKey(7, 3) {
		t.Error("edgeKey deveria ser independente da orientação")
	}
	if edgeKey(3, 7) == edgeKey(3, 8) {
		t.Error("arestas distintas com a mesma chave")
	}
	if got := edgeKey(1, 2); got != uint64(1)<<32|2 {
		t.Errorf("edgeKey(1,2) = %#x", got)
	}
}

func TestMakeCandidateMidpointFallback(t *testing.T) {
	// Quadrics zeradas são singulares: a posição recua para o ponto médio
	rc := &runContext{
		verts: []vertexState{
			{pos: geometry.Vec3{0, 0, 0}},
			{pos: geometry.Vec3{2, 4, 6}},
		},
	}

	c := makeCandidate(rc, 0, 1)

	want := geometry.Vec3{1, 2, 3}
	if c.target != want {
		t.Errorf("target = %v, esperado %v", c.target, want)
	}
	if c.err != 0 {
		t.Errorf("erro de quadric zerada = %g, esperado 0", c.err)
	}
}

func TestMakeCandidateNonNegativeError(t *testing.T) {
	q := geometry.QuadricFromPlane(0, 0, 1, -1) // plano z=1

	rc := &runContext{
		verts: []vertexState{
			{pos: geometry.Vec3{0, 0, 1}, quadric: q},
			{pos: geometry.Vec3{1, 0, 1}, quadric: q},
		},
	}

	c := makeCandidate(rc, 0, 1)
	if c.err < 0 {
		t.Errorf("erro negativo: %g", c.err)
	}
}

func TestPartialSortByError(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, k := range []int{1, 7, 50, 99} {
		cands := make([]candidate, 100)
		for i := range cands {
			cands[i] = candidate{a: uint32(i), err: rng.Float64()}
		}

		full := make([]float64, len(cands))
		for i, c := range cands {
			full[i] = c.err
		}
		sort.Float64s(full)

		partialSortByError(cands, k)

		for i := 0; i < k; i++ {
			if cands[i].err != full[i] {
				t.Fatalf("k=%d: prefixo[%d] = %g, esperado %g", k, i, cands[i].err, full[i])
			}
		}
	}
}

func TestPartialSortByErrorFullSlice(t *testing.T) {
	cands := []candidate{{err: 3}, {err: 1}, {err: 2}}
	partialSortByError(cands, 5) // k além do tamanho: ordena tudo

	for i := 1; i < len(cands); i++ {
		if cands[i].err < cands[i-1].err {
			t.Fatalf("fatia não ordenada: %v", cands)
		}
	}
}

func TestApplyCollapseInvalidatesDegenerates(t *testing.T) {
	// Dois triângulos compartilhando a aresta 1-2: colapsar 1←2 degenera ambos
	mesh := &geometry.Mesh{
		Vertices: []geometry.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		},
		Triangles: []geometry.Triangle{
			{0, 1, 2},
			{1, 3, 2},
		},
	}
	rc := newRunContext(mesh, 1)

	c := makeCandidate(rc, 1, 2)
	if !rc.applyCollapse(&c) {
		t.Fatal("colapso deveria ter sido aplicado")
	}

	if rc.md.countValid() != 0 {
		t.Errorf("triângulos válidos = %d, esperado 0", rc.md.countValid())
	}
	if !rc.verts[2].removed {
		t.Error("vértice fundido não marcado como removido")
	}
	// Segundo colapso sobre vértice removido deve falhar
	c2 := makeCandidate(rc, 0, 2)
	if rc.applyCollapse(&c2) {
		t.Error("colapso sobre vértice removido deveria falhar")
	}
}

func TestSampleEdgesSizeAndDedup(t *testing.T) {
	mesh := gridMesh(50) // 5000 triângulos
	rc := newRunContext(mesh, 1)
	needed := 100

	out := sampleEdges(rc, needed)

	want := needed * sampleFactor
	// O passo inteiro arredonda para baixo, então a amostra pode exceder o
	// alvo em até uma fração de um passo; a deduplicação só reduz.
	if len(out) == 0 {
		t.Fatal("amostra vazia")
	}
	if len(out) > want+want/sampleFactor {
		t.Errorf("amostra com %d candidatos, esperado cerca de %d", len(out), want)
	}
	if len(out) < want/2 {
		t.Errorf("amostra com %d candidatos, esperado pelo menos %d", len(out), want/2)
	}

	seen := make(map[uint64]struct{}, len(out))
	for _, c := range out {
		key := edgeKey(c.a, c.b)
		if _, dup := seen[key]; dup {
			t.Fatalf("aresta duplicada na amostra: %d-%d", c.a, c.b)
		}
		seen[key] = struct{}{}
		if c.err < 0 {
			t.Errorf("candidato com erro negativo: %g", c.err)
		}
		if rc.verts[c.a].removed || rc.verts[c.b].removed {
			t.Errorf("candidato referencia vértice removido: %d-%d", c.a, c.b)
		}
	}
}

func TestSampleEdgesStrideFloor(t *testing.T) {
	mesh := gridMesh(4) // 32 triângulos, bem menos que o desejado
	rc := newRunContext(mesh, 1)

	out := sampleEdges(rc, 1000) // passo recua para 1 e visita todos

	if len(out) == 0 {
		t.Fatal("amostra vazia")
	}
	if len(out) > mesh.TriangleCount() {
		t.Errorf("amostra com %d candidatos de %d triângulos", len(out), mesh.TriangleCount())
	}
}

func TestSampleEdgesSkipsInvalidated(t *testing.T) {
	mesh := gridMesh(4)
	rc := newRunContext(mesh, 1)
	for i := range rc.md.valid {
		rc.md.valid[i] = 0
	}

	if out := sampleEdges(rc, 10); len(out) != 0 {
		t.Errorf("amostra de malha toda inválida produziu %d candidatos", len(out))
	}
}

func TestGenerateCandidatesSwitchesToSampling(t *testing.T) {
	mesh := gridMesh(50)
	rc := newRunContext(mesh, 2)
	needed := 50

	full := generateCandidates(rc, mesh.TriangleCount(), needed)
	sampled := generateCandidates(rc, fullEnumThreshold+1, needed)

	// A enumeração completa devolve todas as arestas únicas da grade; a
	// amostragem fica limitada à vizinhança de sampleFactor×needed.
	if len(sampled) >= len(full) {
		t.Errorf("amostragem devolveu %d candidatos, enumeração completa %d",
			len(sampled), len(full))
	}
	limit := needed*sampleFactor + needed
	if len(sampled) > limit {
		t.Errorf("amostragem devolveu %d candidatos, limite %d", len(sampled), limit)
	}
}

func TestApplyCollapseConcurrentSharedTriangle(t *testing.T) {
	// Colapsos 0←1 e 2←3 não compartilham vértice nenhum, então os locks
	// não os serializam — mas ambos reescrevem o triângulo {1, 3, 4}.
	// Executado sob o detector de corrida, cobre o acesso atômico aos
	// elementos dos arrays de índice e validade.
	for iter := 0; iter < 200; iter++ {
		mesh := &geometry.Mesh{
			Vertices: []geometry.Vec3{
				{0, 0, 0}, {1, 0, 0}, {3, 0, 0}, {2, 0, 0}, {1.5, 1, 0},
			},
			Triangles: []geometry.Triangle{
				{1, 3, 4}, // compartilhado pelos dois colapsos
				{0, 1, 4},
				{2, 3, 4},
			},
		}
		rc := newRunContext(mesh, 2)
		c1 := makeCandidate(rc, 0, 1)
		c2 := makeCandidate(rc, 2, 3)

		var wg sync.WaitGroup
		results := make([]bool, 2)
		wg.Add(2)
		go func() { defer wg.Done(); results[0] = rc.applyCollapse(&c1) }()
		go func() { defer wg.Done(); results[1] = rc.applyCollapse(&c2) }()
		wg.Wait()

		if !results[0] || !results[1] {
			t.Fatal("colapsos sem vértice em comum deveriam ambos aplicar")
		}
		if rc.md.valid[0] == 0 {
			t.Fatal("triângulo compartilhado invalidado indevidamente")
		}
		got := [3]uint32{rc.md.tris[0], rc.md.tris[1], rc.md.tris[2]}
		if got != [3]uint32{0, 2, 4} {
			t.Fatalf("triângulo compartilhado = %v, esperado [0 2 4]", got)
		}
	}
}

func TestRunParallelContention(t *testing.T) {
	// Malha grande com muitos workers: colapsos vizinhos disputam os mesmos
	// triângulos dentro de um lote. Também serve de alvo para -race.
	mesh := gridMesh(128) // 32768 triângulos

	out, outcome := Run(context.Background(), mesh, Options{TargetFacets: 500, Workers: 8}, nil)

	if outcome != OutcomeDone && outcome != OutcomeStalled {
		t.Fatalf("outcome = %s", outcome)
	}
	if out.TriangleCount() >= mesh.TriangleCount() {
		t.Errorf("não reduziu: %d -> %d", mesh.TriangleCount(), out.TriangleCount())
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("malha decimada inválida: %v", err)
	}
}

package geometry

import (
	"math"
	"testing"
)

func TestQuadricFromPlaneEvaluate(t *testing.T) {
	// Plano z = 0 (normal unitária +Z)
	q := QuadricFromPlane(0, 0, 1, 0)

	tests := []struct {
		name    string
		x, y, z float64
		want    float64
	}{
		{"ponto no plano", 3, -2, 0, 0},
		{"distância 1", 0, 0, 1, 1},
		{"distância 2", 5, 5, 2, 4},
		{"abaixo do plano", 0, 0, -3, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := q.Evaluate(tt.x, tt.y, tt.z)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%g,%g,%g) = %g, esperado %g", tt.x, tt.y, tt.z, got, tt.want)
			}
		})
	}
}

func TestQuadricAccumulateSolve(t *testing.T) {
	// Três planos ortogonais se cruzando em (1, 2, 3): o mínimo da soma
	// das quadrics é exatamente a interseção.
	q := QuadricFromPlane(1, 0, 0, -1)
	q.Accumulate(QuadricFromPlane(0, 1, 0, -2))
	q.Accumulate(QuadricFromPlane(0, 0, 1, -3))

	x, y, z, ok := q.SolveMinimum()
	if !ok {
		t.Fatal("SolveMinimum falhou em sistema bem condicionado")
	}
	for i, pair := range [][2]float64{{x, 1}, {y, 2}, {z, 3}} {
		if math.Abs(pair[0]-pair[1]) > 1e-6 {
			t.Errorf("mínimo[%d] = %g, esperado %g", i, pair[0], pair[1])
		}
	}
	if err := q.Evaluate(1, 2, 3); math.Abs(err) > 1e-9 {
		t.Errorf("erro no mínimo = %g, esperado 0", err)
	}
}

func TestSolveMinimumSingular(t *testing.T) {
	// Um único plano não tem mínimo único (matriz 3x3 singular)
	q := QuadricFromPlane(0, 0, 1, 0)
	if _, _, _, ok := q.SolveMinimum(); ok {
		t.Error("SolveMinimum deveria falhar para quadric de um único plano")
	}

	// Quadric zero também é singular
	var zero SymmetricMatrix
	if _, _, _, ok := zero.SolveMinimum(); ok {
		t.Error("SolveMinimum deveria falhar para quadric zero")
	}
}

func TestTriangleQuadricDegenerate(t *testing.T) {
	// Triângulo com dois vértices coincidentes contribui quadric zero
	a := Vec3{0, 0, 0}
	q := TriangleQuadric(a, a, Vec3{1, 0, 0})
	for i, v := range q {
		if v != 0 {
			t.Fatalf("quadric de triângulo degenerado não é zero: coef %d = %g", i, v)
		}
	}
}

func TestTriangleQuadricUnitNormal(t *testing.T) {
	// A quadric do triângulo usa o plano com normal unitária: a escala do
	// triângulo não muda o erro por distância.
	small := TriangleQuadric(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	big := TriangleQuadric(Vec3{0, 0, 0}, Vec3{10, 0, 0}, Vec3{0, 10, 0})

	eSmall := small.Evaluate(0, 0, 2)
	eBig := big.Evaluate(0, 0, 2)
	if math.Abs(eSmall-4) > 1e-9 || math.Abs(eBig-4) > 1e-9 {
		t.Errorf("erro a distância 2: small=%g big=%g, esperado 4 em ambos", eSmall, eBig)
	}
}

func TestQuadricAdd(t *testing.T) {
	a := QuadricFromPlane(1, 0, 0, 0)
	b := QuadricFromPlane(0, 1, 0, 0)
	sum := a.Add(b)

	// Add não muta os operandos
	if a.Evaluate(0, 1, 0) != 0 {
		t.Error("Add mutou o operando a")
	}
	if got := sum.Evaluate(1, 1, 0); math.Abs(got-2) > 1e-9 {
		t.Errorf("soma avaliada em (1,1,0) = %g, esperado 2", got)
	}
}

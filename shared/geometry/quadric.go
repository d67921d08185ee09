package geometry

import "math"

// Épsilon do determinante: abaixo disso o sistema 3x3 é tratado como singular
// e o chamador deve usar o fallback (ponto médio da aresta).
const SingularEps = 1e-10

// SymmetricMatrix é uma matriz simétrica 4x4 armazenada como os 10 coeficientes
// do triângulo superior. Representa o funcional de erro quadrático (QEM): a soma
// das distâncias quadradas de um ponto a um conjunto de planos.
//
// Layout dos índices:
//
//	| 0 1 2 3 |
//	| 1 4 5 6 |
//	| 2 5 7 8 |
//	| 3 6 8 9 |
//
// Quadrics só são somadas ou avaliadas em um ponto; nunca subtraídas.
type SymmetricMatrix [10]float64

// QuadricFromPlane monta a quadric de posto 1 do plano ax+by+cz+d=0
// (produto externo do vetor de coeficientes consigo mesmo).
func QuadricFromPlane(a, b, c, d float64) SymmetricMatrix {
	return SymmetricMatrix{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
}

// Accumulate soma outra quadric nesta, in-place. A soma é comutativa e associativa.
func (q *SymmetricMatrix) Accumulate(o SymmetricMatrix) {
	for i := range q {
		q[i] += o[i]
	}
}

// Add retorna a soma de duas quadrics.
func (q SymmetricMatrix) Add(o SymmetricMatrix) SymmetricMatrix {
	var r SymmetricMatrix
	for i := range q {
		r[i] = q[i] + o[i]
	}
	return r
}

// Evaluate calcula o erro vᵀQv para v = (x, y, z, 1).
// O resultado teórico é sempre ≥ 0; arredondamento pode produzir valores
// levemente negativos, que o chamador deve clamp em zero.
func (q SymmetricMatrix) Evaluate(x, y, z float64) float64 {
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
}

// SolveMinimum resolve o ponto que minimiza o erro da quadric, i.e. o sistema
// linear 3x3 derivado de ∇(vᵀQv) = 0. Retorna ok=false quando a matriz é
// (quase) singular e não existe mínimo único.
func (q SymmetricMatrix) SolveMinimum() (x, y, z float64, ok bool) {
	// Submatriz 3x3 superior-esquerda
	a00, a01, a02 := q[0], q[1], q[2]
	a11, a12 := q[4], q[5]
	a22 := q[7]

	det := a00*(a11*a22-a12*a12) -
		a01*(a01*a22-a12*a02) +
		a02*(a01*a12-a11*a02)
	if math.Abs(det) < SingularEps {
		return 0, 0, 0, false
	}

	// Lado direito: -(q14, q24, q34). Solução via regra de Cramer.
	b0, b1, b2 := -q[3], -q[6], -q[8]

	x = (b0*(a11*a22-a12*a12) - a01*(b1*a22-a12*b2) + a02*(b1*a12-a11*b2)) / det
	y = (a00*(b1*a22-a12*b2) - b0*(a01*a22-a12*a02) + a02*(a01*b2-b1*a02)) / det
	z = (a00*(a11*b2-b1*a12) - a01*(a01*b2-b1*a02) + b0*(a01*a12-a11*a02)) / det
	return x, y, z, true
}

// TrianglePlane calcula o plano (normal unitária + offset) do triângulo p0 p1 p2.
// Retorna ok=false para triângulos degenerados (área ~zero), cujo plano é indefinido.
func TrianglePlane(p0, p1, p2 Vec3) (a, b, c, d float64, ok bool) {
	e1x := float64(p1[0] - p0[0])
	e1y := float64(p1[1] - p0[1])
	e1z := float64(p1[2] - p0[2])
	e2x := float64(p2[0] - p0[0])
	e2y := float64(p2[1] - p0[1])
	e2z := float64(p2[2] - p0[2])

	nx := e1y*e2z - e1z*e2y
	ny := e1z*e2x - e1x*e2z
	nz := e1x*e2y - e1y*e2x

	length := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if length < 1e-12 {
		return 0, 0, 0, 0, false
	}

	a = nx / length
	b = ny / length
	c = nz / length
	d = -(a*float64(p0[0]) + b*float64(p0[1]) + c*float64(p0[2]))
	return a, b, c, d, true
}

// TriangleQuadric monta a quadric do plano de um triângulo.
// Triângulos degenerados contribuem com a quadric zero em vez de propagar NaN.
func TriangleQuadric(p0, p1, p2 Vec3) SymmetricMatrix {
	a, b, c, d, ok := TrianglePlane(p0, p1, p2)
	if !ok {
		return SymmetricMatrix{}
	}
	return QuadricFromPlane(a, b, c, d)
}

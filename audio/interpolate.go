// SPDX-License-Identifier: EPL-2.0

package audio

// cubic evaluates a Catmull-Rom spline through y0..y3 at x in [0, 1],
// where x=0 yields y1 and x=1 yields y2.
func cubic(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}

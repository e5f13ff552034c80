package material

import (
	"fmt"
	"math"
)

// Dielectric represents a transparent medium like glass that bends rays crossing into it
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric medium. The index must be positive and finite.
func NewDielectric(refractiveIndex float64) (Dielectric, error) {
	if !(refractiveIndex > 0) || math.IsInf(refractiveIndex, 0) {
		return Dielectric{}, fmt.Errorf("refractive index must be positive, got %v", refractiveIndex)
	}
	return Dielectric{RefractiveIndex: refractiveIndex}, nil
}

// Interaction is the outcome of a ray meeting the interface between two media
type Interaction struct {
	Incidence   float64 // Signed angle between the ray and the surface normal
	Refraction  float64 // Signed angle between the outgoing ray and the normal (0 for reflection)
	Rotation    float64 // Angle to rotate the incoming line by about the hit point
	Refracted   bool    // False means total internal reflection
	Reflectance float64 // Schlick estimate of the reflected fraction (1 under TIR)
}

// Incidence converts the signed angle from a surface line to the ray line (in (-π/2, π/2])
// into the signed angle from the surface normal. A ray lying along the surface is treated
// as grazing at π/2.
func Incidence(theta float64) float64 {
	if theta == 0 {
		return math.Pi / 2
	}
	return math.Copysign(math.Pi/2-math.Abs(theta), theta)
}

// Refract applies Snell's law to an angle of incidence alpha going from index n1 into n2.
// It reports false, without evaluating asin, when no refracted ray exists.
func Refract(alpha, n1, n2 float64) (float64, bool) {
	sinBeta := math.Sin(alpha) * n1 / n2
	if math.Abs(sinBeta) > 1 {
		return 0, false
	}
	return math.Asin(sinBeta), true
}

// CriticalAngle returns the incidence angle above which light going from n1 into n2 is
// totally internally reflected. It reports false when n1 <= n2 (no critical angle).
func CriticalAngle(n1, n2 float64) (float64, bool) {
	if n1 <= n2 {
		return 0, false
	}
	return math.Asin(n2 / n1), true
}

// Interact decides what happens to a ray whose line meets a surface line at signed angle
// theta when going from index n1 into n2.
//
// Refraction rotates the line by alpha-beta. Total internal reflection mirrors it about
// the surface with a rotation of -2·theta.
func Interact(theta, n1, n2 float64) Interaction {
	alpha := Incidence(theta)

	beta, ok := Refract(alpha, n1, n2)
	if !ok {
		return Interaction{
			Incidence:   alpha,
			Rotation:    -2 * theta,
			Reflectance: 1,
		}
	}

	// Schlick uses the larger of the two angles, which is the one on the less dense side
	cosine := math.Cos(math.Max(math.Abs(alpha), math.Abs(beta)))
	return Interaction{
		Incidence:   alpha,
		Refraction:  beta,
		Rotation:    alpha - beta,
		Refracted:   true,
		Reflectance: Reflectance(cosine, n1/n2),
	}
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	// R0 at normal incidence
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

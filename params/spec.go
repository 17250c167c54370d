package params

import "math"

// Kind is the value type a parameter carries. Every value is stored as a
// float64: booleans as 0 or 1, choices as the index of the selected option.
type Kind int

const (
	Float Kind = iota
	Bool
	Choice
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Choice:
		return "choice"
	default:
		return "float"
	}
}

// Spec declares a parameter's range and default.
type Spec struct {
	Name    string
	Kind    Kind
	Min     float64
	Max     float64
	Default float64
	Step    float64
	Choices []string
}

// Clamp maps v into the declared range of s.
func (s Spec) Clamp(v float64) float64 {
	switch s.Kind {
	case Bool:
		if v != 0 && !math.IsNaN(v) {
			return 1
		}
		return 0
	case Choice:
		if math.IsNaN(v) || len(s.Choices) == 0 {
			return 0
		}
		i := math.Round(v)
		return math.Max(0, math.Min(float64(len(s.Choices)-1), i))
	}
	if math.IsNaN(v) {
		return s.Default
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Parameter names known to the sketch.
const (
	DisplacementScale = "displacementScale"
	TileFactor        = "tileFactor"
	StripeWidth       = "stripeWidth"
	StripeAngle       = "stripeAngleDegrees"
	ActiveField       = "activeField"
	InLightEnabled    = "inLightEnabled"
	OutLightEnabled   = "outLightEnabled"
	BlobAmplitude     = "blobAmplitude"
	AudioGain         = "audioGain"
	AudioLevel        = "audioLevel"

	PlaneSeed  = "planeSeed"
	PlaneScale = "planeScale"
	PlanePinch = "planePinch"
	BlobSeed   = "blobSeed"
)

// FieldChoices are the options of ActiveField, in index order.
var FieldChoices = []string{"box", "stripe"}

// Defaults returns the declared parameter set in display order.
func Defaults() []Spec {
	return []Spec{
		{Name: ActiveField, Kind: Choice, Choices: FieldChoices, Max: 1},
		{Name: DisplacementScale, Min: 0, Max: 0.2, Default: 0.024, Step: 0.001},
		{Name: TileFactor, Min: 0.1, Max: 100, Default: 10, Step: 0.1},
		{Name: StripeWidth, Min: 1, Max: 50, Default: 10, Step: 0.1},
		{Name: StripeAngle, Min: 0, Max: 360, Default: 45, Step: 1},
		{Name: InLightEnabled, Kind: Bool, Max: 1, Default: 1},
		{Name: OutLightEnabled, Kind: Bool, Max: 1, Default: 1},
		{Name: BlobAmplitude, Min: 0, Max: 0.3, Default: 0.1, Step: 0.005},
		{Name: AudioGain, Min: 0, Max: 4, Default: 0, Step: 0.1},
		{Name: AudioLevel, Min: 0, Max: 1},
		{Name: PlaneSeed, Min: 0, Max: math.MaxFloat64},
		{Name: PlaneScale, Min: 1.2, Max: 2.8, Default: 2},
		{Name: PlanePinch, Min: 0.3, Max: 0.7, Default: 0.7},
		{Name: BlobSeed, Min: 0, Max: math.MaxFloat64},
	}
}

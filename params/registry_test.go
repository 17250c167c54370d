package params

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	r := NewRegistry(Defaults())
	assert.InDelta(t, 0.024, r.Float(DisplacementScale), 1e-12)
	assert.Equal(t, 10.0, r.Float(TileFactor))
	assert.Equal(t, 10.0, r.Float(StripeWidth))
	assert.Equal(t, 45.0, r.Float(StripeAngle))
	assert.True(t, r.Bool(InLightEnabled))
	assert.True(t, r.Bool(OutLightEnabled))
	i, name := r.Choice(ActiveField)
	assert.Equal(t, 0, i)
	assert.Equal(t, "box", name)
}

func TestSetClamps(t *testing.T) {
	r := NewRegistry(Defaults())
	tests := []struct {
		name string
		in   float64
		exp  float64
	}{
		{DisplacementScale, 5, 0.2},
		{DisplacementScale, -1, 0},
		{TileFactor, 0, 0.1},
		{StripeWidth, 100, 50},
		{StripeAngle, 400, 360},
		{ActiveField, 7, 1},
		{ActiveField, -3, 0},
		{InLightEnabled, 0.3, 1},
		{DisplacementScale, math.NaN(), 0.024},
	}
	for _, tt := range tests {
		v, err := r.Set(tt.name, tt.in)
		require.NoError(t, err)
		assert.InDelta(t, tt.exp, v, 1e-12, tt.name)
		assert.InDelta(t, tt.exp, r.Float(tt.name), 1e-12, tt.name)
	}
}

func TestUnknownParameter(t *testing.T) {
	r := NewRegistry(Defaults())
	_, err := r.Set("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownParameter)
	_, err = r.SetString("nope", "1")
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestSetString(t *testing.T) {
	r := NewRegistry(Defaults())

	_, err := r.SetString(ActiveField, "Stripe")
	require.NoError(t, err)
	_, name := r.Choice(ActiveField)
	assert.Equal(t, "stripe", name)

	_, err = r.SetString(OutLightEnabled, "off")
	require.NoError(t, err)
	assert.False(t, r.Bool(OutLightEnabled))

	v, err := r.SetString(TileFactor, " 3.5 ")
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = r.SetString(InLightEnabled, "maybe")
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestNudge(t *testing.T) {
	r := NewRegistry(Defaults())

	v, err := r.Nudge(StripeAngle, 2)
	require.NoError(t, err)
	assert.Equal(t, 47.0, v)

	v, _ = r.Nudge(ActiveField, 1)
	assert.Equal(t, 1.0, v)
	v, _ = r.Nudge(ActiveField, 1)
	assert.Equal(t, 0.0, v)
	v, _ = r.Nudge(ActiveField, -1)
	assert.Equal(t, 1.0, v)

	v, _ = r.Nudge(InLightEnabled, 1)
	assert.Equal(t, 0.0, v)
}

func TestObserverSeesChangesOnly(t *testing.T) {
	r := NewRegistry(Defaults())
	var got []string
	r.Observe(ObserverFunc(func(name string, _ float64) {
		got = append(got, name)
	}))

	r.Set(TileFactor, 4)
	r.Set(TileFactor, 4)
	r.Set(StripeWidth, 12)
	assert.Equal(t, []string{TileFactor, StripeWidth}, got)
}

func TestInboxAppliesInOrder(t *testing.T) {
	r := NewRegistry(Defaults())
	in := NewInbox()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.Post(StripeWidth, 20)
		}()
	}
	wg.Wait()
	in.Post(TileFactor, 2)
	in.Post(TileFactor, 3)
	in.PostText(ActiveField, "stripe")
	in.Post("missing", 1)

	// Nothing is visible until the frame loop drains.
	assert.Equal(t, 10.0, r.Float(TileFactor))

	err := in.Drain(r)
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.Equal(t, 3.0, r.Float(TileFactor))
	assert.Equal(t, 20.0, r.Float(StripeWidth))
	assert.True(t, r.Bool(ActiveField))
	assert.Zero(t, in.Len())
}

func TestAnimate(t *testing.T) {
	r := NewRegistry(Defaults())
	require.NoError(t, Animate(r, 0))
	assert.InDelta(t, 0, r.Float(PlaneSeed), 1e-12)
	assert.InDelta(t, 2, r.Float(PlaneScale), 1e-12)
	assert.InDelta(t, 0.7, r.Float(PlanePinch), 1e-12)

	require.NoError(t, Animate(r, 10))
	assert.InDelta(t, 2, r.Float(PlaneSeed), 1e-12)
	assert.InDelta(t, 1, r.Float(BlobSeed), 1e-12)
	assert.InDelta(t, 2+math.Sin(2.5)*0.8, r.Float(PlaneScale), 1e-12)
	assert.InDelta(t, 0.5+math.Cos(10.0/6)*0.2, r.Float(PlanePinch), 1e-12)
}

func TestAnimateReportsMissingParameters(t *testing.T) {
	var specs []Spec
	for _, s := range Defaults() {
		if s.Name != PlaneSeed && s.Name != BlobSeed {
			specs = append(specs, s)
		}
	}
	r := NewRegistry(specs)
	err := Animate(r, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.Contains(t, err.Error(), PlaneSeed)
	assert.Contains(t, err.Error(), BlobSeed)
	// The declared ones are still written.
	assert.InDelta(t, 2+math.Sin(2.5)*0.8, r.Float(PlaneScale), 1e-12)
}

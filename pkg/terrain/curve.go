package terrain

import "sort"

// Curve shapes a normalized noise value before it is scaled to world height.
// Implementations may be non-monotonic; their output is used as-is.
type Curve interface {
	Evaluate(t float32) float32
}

// Identity leaves values unchanged.
type Identity struct{}

// Evaluate returns t.
func (Identity) Evaluate(t float32) float32 { return t }

// Key is one control point of a Keyframes curve.
type Key struct {
	Time  float32 `yaml:"t"`
	Value float32 `yaml:"v"`
}

// Keyframes is a piecewise-linear curve through sorted control points.
// Inputs before the first key or after the last evaluate to the end values.
type Keyframes struct {
	keys []Key
}

// NewKeyframes sorts keys by time. An empty key set behaves like Identity.
func NewKeyframes(keys ...Key) *Keyframes {
	sorted := append([]Key(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Keyframes{keys: sorted}
}

// Keys returns a copy of the control points.
func (k *Keyframes) Keys() []Key {
	return append([]Key(nil), k.keys...)
}

// Evaluate interpolates between the two keys around t.
func (k *Keyframes) Evaluate(t float32) float32 {
	n := len(k.keys)
	switch {
	case n == 0:
		return t
	case t <= k.keys[0].Time:
		return k.keys[0].Value
	case t >= k.keys[n-1].Time:
		return k.keys[n-1].Value
	}

	i := sort.Search(n, func(i int) bool { return k.keys[i].Time >= t })
	a, b := k.keys[i-1], k.keys[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Value
	}
	f := (t - a.Time) / span
	return a.Value + f*(b.Value-a.Value)
}

// Remap applies curve to every raw sample and scales by multiplier, returning
// a new field. Curve output is not clamped.
func Remap(raw *HeightField, curve Curve, multiplier float32) *HeightField {
	if curve == nil {
		curve = Identity{}
	}
	out := NewHeightField(raw.Width, raw.Depth, raw.CellSize)
	for i, v := range raw.Values {
		out.Values[i] = curve.Evaluate(clampf(v, 0, 1)) * multiplier
	}
	return out
}

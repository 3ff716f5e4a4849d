package style

// Card style tokens. Themes map each token to a class through the
// "card.<field>.<token>" slots.
const (
	CornerNone  = "none"
	CornerSmall = "sm"
	CornerMed   = "md"
	CornerLarge = "lg"

	BorderNone  = "none"
	BorderThin  = "thin"
	BorderThick = "thick"

	BackgroundNone    = "none"
	BackgroundSubtle  = "subtle"
	BackgroundAccent  = "accent"
	BackgroundInverse = "inverse"

	PaddingNone  = "none"
	PaddingSmall = "sm"
	PaddingMed   = "md"
	PaddingLarge = "lg"
)

// CardStyle is the complete visual style of a card.
type CardStyle struct {
	Corner       string `json:"corner" yaml:"corner"`
	Border       string `json:"border" yaml:"border"`
	Background   string `json:"background" yaml:"background"`
	PaddingInner string `json:"paddingInner" yaml:"padding_inner"`
	PaddingOuter string `json:"paddingOuter" yaml:"padding_outer"`
}

// DefaultCardStyle returns the style new card sections start with.
func DefaultCardStyle() CardStyle {
	return CardStyle{
		Corner:       CornerMed,
		Border:       BorderThin,
		Background:   BackgroundNone,
		PaddingInner: PaddingMed,
		PaddingOuter: PaddingSmall,
	}
}

// CardPatch is a partial CardStyle. Nil fields are left unchanged.
type CardPatch struct {
	Corner       *string `json:"corner,omitempty" yaml:"corner,omitempty"`
	Border       *string `json:"border,omitempty" yaml:"border,omitempty"`
	Background   *string `json:"background,omitempty" yaml:"background,omitempty"`
	PaddingInner *string `json:"paddingInner,omitempty" yaml:"padding_inner,omitempty"`
	PaddingOuter *string `json:"paddingOuter,omitempty" yaml:"padding_outer,omitempty"`
}

// Apply returns s with the non-nil fields of p applied.
func (s CardStyle) Apply(p *CardPatch) CardStyle {
	if p == nil {
		return s
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.Corner, p.Corner)
	set(&s.Border, p.Border)
	set(&s.Background, p.Background)
	set(&s.PaddingInner, p.PaddingInner)
	set(&s.PaddingOuter, p.PaddingOuter)
	return s
}

// Merge returns a patch holding the fields of p overridden by the non-nil
// fields of q.
func (p *CardPatch) Merge(q *CardPatch) *CardPatch {
	var out CardPatch
	if p != nil {
		out = *p
	}
	if q == nil {
		return &out
	}
	pick := func(dst **string, v *string) {
		if v != nil {
			s := *v
			*dst = &s
		}
	}
	pick(&out.Corner, q.Corner)
	pick(&out.Border, q.Border)
	pick(&out.Background, q.Background)
	pick(&out.PaddingInner, q.PaddingInner)
	pick(&out.PaddingOuter, q.PaddingOuter)
	return &out
}

// IsEmpty reports whether the patch changes nothing.
func (p *CardPatch) IsEmpty() bool {
	return p == nil || (p.Corner == nil && p.Border == nil && p.Background == nil &&
		p.PaddingInner == nil && p.PaddingOuter == nil)
}

// Str returns a pointer to s for building patches.
func Str(s string) *string { return &s }

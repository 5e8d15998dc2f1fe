// Package style infers display and output typography from the nominal font
// identity attached to extracted text. Nominal identifiers (BaseFont-style
// names such as "ArialMT-Bold" or "Courier") rarely match an available font,
// so the package maps them onto generic display stacks for the overlay and
// onto a small table of embeddable output variants for the commit pass.
package style

import "strings"

// Hint carries the style metadata a render provider may attach to a run.
// Zero values mean the provider gave no signal for that field.
type Hint struct {
	Weight int    // CSS-style numeric weight, 700 and up is bold
	Slant  string // "italic", "oblique" or ""
	Family string // provider-reported family name, if any
}

// Variant names an embeddable output font. The plain sans variant is the
// universal fallback and is always available.
type Variant string

const (
	Sans            Variant = "sans"
	SansBold        Variant = "sans-bold"
	SansItalic      Variant = "sans-italic"
	SansBoldItalic  Variant = "sans-bold-italic"
	Serif           Variant = "serif"
	SerifBold       Variant = "serif-bold"
	SerifItalic     Variant = "serif-italic"
	SerifBoldItalic Variant = "serif-bold-italic"
	Mono            Variant = "mono"
	MonoBold        Variant = "mono-bold"
	MonoItalic      Variant = "mono-italic"
	MonoBoldItalic  Variant = "mono-bold-italic"
)

// Display font stacks for the editable overlay.
const (
	sansStack  = `Helvetica, Arial, "Liberation Sans", sans-serif`
	serifStack = `"Times New Roman", Times, "Liberation Serif", serif`
	monoStack  = `"Courier New", Courier, "Liberation Mono", monospace`
)

type family int

const (
	familySans family = iota
	familySerif
	familyMono
)

func familyOf(nominalFontID string) family {
	name := strings.ToLower(nominalFontID)
	switch {
	case strings.Contains(name, "mono") || strings.Contains(name, "courier") || strings.Contains(name, "consol"):
		return familyMono
	case strings.Contains(name, "serif") && !strings.Contains(name, "sans"):
		return familySerif
	case strings.Contains(name, "times") || strings.Contains(name, "roman") ||
		strings.Contains(name, "georgia") || strings.Contains(name, "garamond") ||
		strings.Contains(name, "book"):
		return familySerif
	default:
		return familySans
	}
}

// DisplayStack resolves the generic CSS-style family stack used to render the
// editable overlay for text nominally set in the given font.
func DisplayStack(nominalFontID string) string {
	switch familyOf(nominalFontID) {
	case familyMono:
		return monoStack
	case familySerif:
		return serifStack
	default:
		return sansStack
	}
}

// ResolveStyle determines bold/italic for a run. Explicit hint fields win
// over keyword matching in the nominal name; with no signal at all both are
// false.
func ResolveStyle(nominalFontID string, hint Hint) (bold, italic bool) {
	name := strings.ToLower(nominalFontID)

	switch {
	case hint.Weight != 0:
		bold = hint.Weight >= 700
	default:
		bold = strings.Contains(name, "bold") ||
			strings.Contains(name, "black") ||
			strings.Contains(name, "heavy")
	}

	switch {
	case hint.Slant != "":
		slant := strings.ToLower(hint.Slant)
		italic = slant == "italic" || slant == "oblique"
	default:
		italic = strings.Contains(name, "italic") || strings.Contains(name, "oblique")
	}
	return bold, italic
}

var variantTable = map[family][2][2]Variant{
	familySans:  {{Sans, SansItalic}, {SansBold, SansBoldItalic}},
	familySerif: {{Serif, SerifItalic}, {SerifBold, SerifBoldItalic}},
	familyMono:  {{Mono, MonoItalic}, {MonoBold, MonoBoldItalic}},
}

// OutputFont picks the embeddable variant for replacement text nominally set
// in the given font with the requested emphasis. Unknown families fall back
// to the plain sans variant.
func OutputFont(nominalFontID string, bold, italic bool) Variant {
	row, ok := variantTable[familyOf(nominalFontID)]
	if !ok {
		return Sans
	}
	b, i := 0, 0
	if bold {
		b = 1
	}
	if italic {
		i = 1
	}
	return row[b][i]
}

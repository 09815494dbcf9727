package report

import "fmt"

// Variant selects the page design a report renders with
type Variant int

const (
	VariantPrimary Variant = iota
	VariantDesignB
)

// Template files per variant
const (
	TemplatePrimary = "smtam_template_1.html"
	TemplateDesignB = "smtam_template_2.html"
)

// Variants lists every variant
var Variants = []Variant{VariantPrimary, VariantDesignB}

func (v Variant) String() string {
	switch v {
	case VariantPrimary:
		return "primary"
	case VariantDesignB:
		return "design_b"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// TemplateFile returns the page template the variant renders with
func (v Variant) TemplateFile() string {
	switch v {
	case VariantDesignB:
		return TemplateDesignB
	default:
		return TemplatePrimary
	}
}

// ShowsRanking reports whether the variant's page displays the cross-fund
// ranking. Only those variants fetch it.
func (v Variant) ShowsRanking() bool {
	return v == VariantDesignB
}

// ParseVariant parses a variant name as returned by String
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if v.String() == s {
			return v, nil
		}
	}
	return VariantPrimary, fmt.Errorf("unknown report variant %q", s)
}

package valueobject

import "strings"

// Короткие коды типов покрытия Medicare.
const (
	CoverageMA  = "MA"
	CoverageMS  = "MS"
	CoveragePDP = "PDP"
)

type coverageRule struct {
	code    string
	needles []string
}

// Порядок важен: первое совпадение выигрывает.
var coverageRules = []coverageRule{
	{code: CoverageMA, needles: []string{"medicare advantage", "(ma)"}},
	{code: CoverageMS, needles: []string{"medicare supplement", "(ms)"}},
	{code: CoveragePDP, needles: []string{"prescription drug", "pdp"}},
}

// NormalizeCoverage сводит подпись вида "(MA) Medicare Advantage" к короткому коду.
// Нераспознанная подпись возвращается как есть.
func NormalizeCoverage(label string) string {
	if label == "" {
		return ""
	}
	lower := strings.ToLower(label)
	for _, rule := range coverageRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.code
			}
		}
	}
	return label
}

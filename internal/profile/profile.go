// Package profile holds the static issuer profile table and the issuer
// detector. A profile describes how one card issuer's statement layout
// is detected and parsed; the table is read-only after process start.
package profile

import (
	"regexp"
	"strings"

	"faturas/internal/categorize"
)

// Profile is the per-issuer statement configuration.
type Profile struct {
	// ID identifies the issuer, e.g. "nubank".
	ID string

	// Keywords detect the issuer by case-insensitive containment in the
	// extracted text. Longer keywords are more specific.
	Keywords []string

	// Line matches one transaction line with capture groups for
	// date, description and value, in that order.
	Line *regexp.Regexp

	// Installment matches an installment marker inside the description
	// with capture groups for current and total.
	Installment *regexp.Regexp

	// DateLayout is the Go reference layout for the date capture.
	DateLayout string

	// HasYear reports whether DateLayout carries an explicit year.
	// When false the reference year must be supplied at parse time.
	HasYear bool

	// Categories are the issuer's ordered category keyword rules.
	Categories []categorize.Rule
}

// Table lists all supported issuer profiles. Declaration order is the
// detection tie-break order and must stay stable.
var Table = []*Profile{
	{
		ID:          "nubank",
		Keywords:    []string{"nubank", "nu pagamentos"},
		Line:        regexp.MustCompile(`(?i)(\d{2}/\d{2})\s+(.+?)\s+(R\$\s*[\d.,]+)`),
		Installment: regexp.MustCompile(`(\d+)/(\d+)`),
		DateLayout:  "02/01",
		HasYear:     false,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"restaurante", "lanchonete", "delivery", "ifood", "uber eats"}},
			{Label: "transporte", Keywords: []string{"uber", "99", "posto", "combustivel", "estacionamento"}},
			{Label: "saude", Keywords: []string{"farmacia", "drogaria", "hospital", "clinica", "medico"}},
			{Label: "compras", Keywords: []string{"magazine", "americanas", "mercado livre", "amazon"}},
			{Label: "servicos", Keywords: []string{"netflix", "spotify", "internet", "telefone"}},
		},
	},
	{
		ID:       "itau",
		Keywords: []string{"itau", "itaú"},
		// The value capture is anchored to end of line: an unanchored
		// [\d.,]+ would stop at the first digit of an installment
		// marker and truncate the description before it.
		Line:        regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(R\$\s*[\d.,]+|[\d.,]+)\s*$`),
		Installment: regexp.MustCompile(`(?i)PARC\s*(\d+)/(\d+)`),
		DateLayout:  "02/01/2006",
		HasYear:     true,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"rest", "lanch", "delivery", "ifood"}},
			{Label: "transporte", Keywords: []string{"uber", "taxi", "posto", "shell", "br"}},
			{Label: "saude", Keywords: []string{"farm", "drog", "hosp", "clin"}},
			{Label: "compras", Keywords: []string{"mag", "loja", "shopping"}},
			{Label: "servicos", Keywords: []string{"netflix", "spotify", "tim", "vivo"}},
		},
	},
	{
		ID:          "bradesco",
		Keywords:    []string{"bradesco"},
		Line:        regexp.MustCompile(`(?i)(\d{2}/\d{2})\s+(.+?)\s+(\d+,\d{2})`),
		Installment: regexp.MustCompile(`(?i)(\d+)ª\s*DE\s*(\d+)`),
		DateLayout:  "02/01",
		HasYear:     false,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"rest", "alim", "delivery"}},
			{Label: "transporte", Keywords: []string{"combustivel", "posto", "uber"}},
			{Label: "saude", Keywords: []string{"farmacia", "saude"}},
			{Label: "compras", Keywords: []string{"varejo", "loja"}},
			{Label: "servicos", Keywords: []string{"assinatura", "streaming"}},
		},
	},
	{
		ID:       "santander",
		Keywords: []string{"santander"},
		// Anchored for the same reason as itau above.
		Line:        regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{2})\s+(.+?)\s+(R\$\s*[\d.,]+|[\d.,]+)\s*$`),
		Installment: regexp.MustCompile(`(?i)PARCELA\s*(\d+)/(\d+)`),
		DateLayout:  "02/01/06",
		HasYear:     true,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"restaurante", "alimentacao"}},
			{Label: "transporte", Keywords: []string{"combustivel", "transporte"}},
			{Label: "saude", Keywords: []string{"saude", "farmacia"}},
			{Label: "compras", Keywords: []string{"compras", "varejo"}},
			{Label: "servicos", Keywords: []string{"servicos", "utilidades"}},
		},
	},
	{
		ID:          "caixa",
		Keywords:    []string{"caixa", "cef"},
		Line:        regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(R\$\s*[\d.,]+)`),
		Installment: regexp.MustCompile(`(?i)(\d+)/(\d+)\s*PARCELA`),
		DateLayout:  "02/01/2006",
		HasYear:     true,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"aliment", "rest", "lanch"}},
			{Label: "transporte", Keywords: []string{"combust", "posto", "transport"}},
			{Label: "saude", Keywords: []string{"farm", "saude", "medic"}},
			{Label: "compras", Keywords: []string{"loja", "magazine", "compra"}},
			{Label: "servicos", Keywords: []string{"servico", "assinatura"}},
		},
	},
	{
		ID:          "btg",
		Keywords:    []string{"btg pactual", "btg"},
		Line:        regexp.MustCompile(`(?i)(\d{2}\s+\w{3})\s+(.+?)\s+(R\$\s*[\d.,]+)`),
		Installment: regexp.MustCompile(`\((\d+)/(\d+)\)`),
		DateLayout:  "2 Jan",
		HasYear:     false,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"restaurante", "bread", "chef", "california"}},
			{Label: "transporte", Keywords: []string{"posto", "grid", "combustivel"}},
			{Label: "saude", Keywords: []string{"farmacia", "clinica", "medico"}},
			{Label: "compras", Keywords: []string{"damyller", "calcad", "livraria", "shopping"}},
			{Label: "servicos", Keywords: []string{"mensalidade", "hotel", "hair"}},
		},
	},
	{
		ID:          "unicred",
		Keywords:    []string{"unicred"},
		Line:        regexp.MustCompile(`(?i)(\d{1,2}/\w{3})\s+(.+?)\s+(R\$\s*[\d.,]+)`),
		Installment: regexp.MustCompile(`(?i)Parc\.(\d+)/(\d+)`),
		DateLayout:  "2/Jan",
		HasYear:     false,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"angeloni", "cooper", "nosso pao", "mc donalds", "pizzaria", "cantina", "burger", "lanches", "cafe"}},
			{Label: "transporte", Keywords: []string{"posto", "postos"}},
			{Label: "saude", Keywords: []string{"farmacia", "drogaria", "raia"}},
			{Label: "compras", Keywords: []string{"garden", "magazine"}},
			{Label: "servicos", Keywords: []string{"seguros", "anuidade", "live"}},
		},
	},
	{
		ID:          "c6",
		Keywords:    []string{"c6 carbon", "banco c6", "c6 bank", "c6"},
		Line:        regexp.MustCompile(`(?i)(\d{1,2}\s+\w{3})\s+(.+?)\s+([\d.,]+)$`),
		Installment: regexp.MustCompile(`(?i)-\s*Parcela\s+(\d+)/(\d+)`),
		DateLayout:  "2 Jan",
		HasYear:     false,
		Categories: []categorize.Rule{
			{Label: "alimentacao", Keywords: []string{"ifood", "restaurante"}},
			{Label: "transporte", Keywords: []string{"latam", "uber", "posto"}},
			{Label: "saude", Keywords: []string{"farmacia", "clinica"}},
			{Label: "compras", Keywords: []string{"amazon", "flexform", "mysadigital"}},
			{Label: "servicos", Keywords: []string{"paypal", "microsoft", "google", "prime", "xbox", "anuidade"}},
		},
	},
}

// ByID returns the profile with the given identifier.
func ByID(id string) (*Profile, bool) {
	for _, p := range Table {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// SupportedIssuers lists the issuer identifiers in declaration order.
func SupportedIssuers() []string {
	ids := make([]string, 0, len(Table))
	for _, p := range Table {
		ids = append(ids, p.ID)
	}
	return ids
}

// Detect scans extracted statement text for issuer signature keywords and
// returns the matching profile. When several profiles match, the one with
// the longest matched keyword wins; remaining ties go to declaration
// order, so detection is deterministic. Returns (nil, false) when no
// keyword is found; callers must treat that as a valid outcome.
func Detect(text string) (*Profile, bool) {
	lower := strings.ToLower(text)

	var best *Profile
	bestLen := 0
	for _, p := range Table {
		for _, kw := range p.Keywords {
			if len(kw) > bestLen && strings.Contains(lower, kw) {
				best = p
				bestLen = len(kw)
			}
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Categorizer builds the issuer's categorizer from its rule table.
func (p *Profile) Categorizer() *categorize.Categorizer {
	return categorize.New(p.Categories, categorize.DefaultCategory)
}

package entity

import (
	"time"

	"github.com/ignatzorin/proposal-intake/internal/domain/formfield"
	"github.com/ignatzorin/proposal-intake/internal/domain/valueobject"
)

const (
	FormVersion    = "v1.0"
	DefaultHowMany = "Single"

	// Формат Date.toISOString: UTC с миллисекундами.
	submittedLayout = "2006-01-02T15:04:05.000Z"
)

// Proposal - нормализованный документ заявки на одного или двух клиентов.
type Proposal struct {
	HowMany string             `json:"how_many"`
	Client1 Client             `json:"client1"`
	Client2 Client             `json:"client2"`
	Meta    Meta               `json:"meta"`
	Raw     formfield.RawInput `json:"raw"`
}

type Client struct {
	FirstName         string   `json:"first_name"`
	CurrentCoverage   string   `json:"current_coverage"`
	QuotingCoverage   string   `json:"quoting_coverage"`
	MASelectionMethod string   `json:"ma_selection_method"`
	CurrentMAPlan     string   `json:"current_ma_plan"`
	MACodes           []string `json:"ma_codes"`
	MSSelectionMethod string   `json:"ms_selection_method"`
	MSCode            string   `json:"ms_code"`
	MSPremium         string   `json:"ms_premium"`
	PDPCode           string   `json:"pdp_code"`
}

type Meta struct {
	SubmissionID string `json:"submission_id"`
	FormID       string `json:"form_id"`
	IP           string `json:"ip"`
	SubmittedUTC string `json:"submitted_utc"`
	FormVersion  string `json:"form_version"`
}

// NewProposal собирает документ из сырых полей формы. Отсутствующие поля дают
// пустые строки и пустые списки, ошибок не бывает.
func NewProposal(raw formfield.RawInput, now time.Time) *Proposal {
	howMany := formfield.Resolve(raw, formfield.HowManyKeys...)
	if howMany == "" {
		howMany = DefaultHowMany
	}

	return &Proposal{
		HowMany: howMany,
		Client1: newClient(raw, formfield.Client1Keys),
		Client2: newClient(raw, formfield.Client2Keys),
		Meta: Meta{
			SubmissionID: formfield.Resolve(raw, formfield.Meta.SubmissionID...),
			FormID:       formfield.Resolve(raw, formfield.Meta.FormID...),
			IP:           formfield.Resolve(raw, formfield.Meta.IP...),
			SubmittedUTC: now.UTC().Format(submittedLayout),
			FormVersion:  FormVersion,
		},
		Raw: raw.Clone(),
	}
}

func newClient(raw formfield.RawInput, keys formfield.ClientKeys) Client {
	return Client{
		FirstName:         formfield.Resolve(raw, keys.FirstName...),
		CurrentCoverage:   valueobject.NormalizeCoverage(formfield.Resolve(raw, keys.CurrentCoverage...)),
		QuotingCoverage:   valueobject.NormalizeCoverage(formfield.Resolve(raw, keys.QuotingCoverage...)),
		MASelectionMethod: formfield.Resolve(raw, keys.MASelectionMethod...),
		CurrentMAPlan:     formfield.Resolve(raw, keys.CurrentMAPlan...),
		MACodes:           resolveAll(raw, keys.MAPlanCodes),
		MSSelectionMethod: formfield.Resolve(raw, keys.MSSelectionMethod...),
		MSCode:            formfield.Resolve(raw, keys.MSCode...),
		MSPremium:         formfield.Resolve(raw, keys.MSPremium...),
		PDPCode:           formfield.Resolve(raw, keys.PDPCode...),
	}
}

// resolveAll разрешает каждый слот и отбрасывает пустые, сохраняя порядок слотов.
func resolveAll(raw formfield.RawInput, slots [][]string) []string {
	values := make([]string, 0, len(slots))
	for _, slot := range slots {
		if v := formfield.Resolve(raw, slot...); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// WithClientIP заполняет meta.ip адресом запроса, если форма его не передала.
func (p *Proposal) WithClientIP(ip string) *Proposal {
	if p.Meta.IP == "" {
		p.Meta.IP = ip
	}
	return p
}

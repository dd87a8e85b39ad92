package proposal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"

	"github.com/ignatzorin/proposal-intake/internal/domain/entity"
)

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// Encode сериализует документ в читаемый JSON с отступом в два пробела.
// Символы <, > и & не экранируются.
// Эти же байты отдаются на скачивание и сохраняются в хранилище.
func Encode(p *entity.Proposal) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("proposal: не удалось сериализовать документ: %w", err)
	}
	return pretty.PrettyOptions(buf.Bytes(), prettyOptions), nil
}

package sh

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/bytedance/sonic"

	"github.com/robotalks/tempair.go/pkg/erp1"
	"github.com/robotalks/tempair.go/pkg/esp3"
)

// ParseHex parses bytes from args like "55 00 01", "550001", "0x55" or
// "55:00:01".
func ParseHex(args ...string) ([]byte, error) {
	var digits strings.Builder
	for _, arg := range args {
		for _, token := range strings.FieldsFunc(arg, func(r rune) bool {
			return r == ' ' || r == ',' || r == ':' || r == '-'
		}) {
			token = strings.TrimPrefix(strings.ToLower(token), "0x")
			if len(token)%2 != 0 {
				token = "0" + token
			}
			digits.WriteString(token)
		}
	}
	data, err := hex.DecodeString(digits.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHex, err)
	}
	return data, nil
}

// FormatHex formats bytes as space separated hex.
func FormatHex(data []byte) string {
	return fmt.Sprintf("% X", data)
}

// FormatResult renders an engine result for display.
func FormatResult(r *esp3.Result) string {
	if r.Outcome != esp3.PacketReceived {
		return fmt.Sprintf("%s consumed=%d", r.Outcome, r.Consumed)
	}
	s := fmt.Sprintf("%s %s data=[%s]", r.Outcome, r.Type, FormatHex(r.Payload.Data()))
	if opt := r.Payload.OptionalData(); len(opt) > 0 {
		s += fmt.Sprintf(" opt=[%s]", FormatHex(opt))
	}
	switch r.Type {
	case esp3.PacketTypeRadioErp1:
		if tel, err := erp1.Decode(r.Type, r.Payload); err == nil {
			s += " " + tel.String()
		} else {
			s += " " + err.Error()
		}
	case esp3.PacketTypeEvent:
		if data := r.Payload.Data(); len(data) > 0 {
			s += " " + esp3.EventType(data[0]).String()
		}
	}
	return s
}

// Print prints v as JSON when OutputJSON is set, or text otherwise.
func Print(c *ishell.Context, v interface{}, text string) {
	if ShellFrom(c).OutputJSON {
		out, err := sonic.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

package encoding

import (
	"bytes"
	"encoding/json"
)

func jsonMarshalNoEscape(v any) ([]byte, error) {
	output := bytes.NewBuffer([]byte{})
	encoder := json.NewEncoder(output)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(v)
	return output.Bytes(), err
}

func jsonIndent(b []byte, indent int) ([]byte, error) {
	if indent <= 0 {
		return b, nil
	}
	var output bytes.Buffer
	err := json.Indent(&output, b, "", string(bytes.Repeat([]byte(" "), indent)))
	if err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

package conf

import (
	"bytes"
	"io"
	"os"
)

type envExpandedReader struct {
	src io.Reader
	buf *bytes.Reader
}

// NewEnvExpandedReader expands ${VAR} and $VAR references from the
// environment before the content reaches the decoder.
func NewEnvExpandedReader(r io.Reader) io.Reader {
	return &envExpandedReader{src: r}
}

func (r *envExpandedReader) Read(p []byte) (int, error) {
	if r.buf == nil {
		raw, err := io.ReadAll(r.src)
		if err != nil {
			return 0, err
		}

		r.buf = bytes.NewReader([]byte(os.ExpandEnv(string(raw))))
	}

	return r.buf.Read(p)
}

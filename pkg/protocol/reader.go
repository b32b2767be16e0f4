package protocol

import (
	"bufio"
	"io"
	"strings"

	"github.com/arthur-debert/fsbridge/pkg/errors"
)

// Reader reads newline-terminated lines from the controller
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r, typically os.Stdin
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator. A final line
// missing its newline is still returned; the following call reports
// io.EOF. Other read failures are wrapped as IO errors.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if err == io.EOF {
			return "", io.EOF
		}
		return "", errors.Wrap(err, errors.ErrIO, "failed to read from controller")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

package request

import (
	"bytes"
	"fmt"
	"io"

	"github.com/brizzai/auto-request/transport"
)

// replayable returns a function producing the body for each attempt. Stream
// bodies, including multipart file contents, can only be read once, so they
// are drained into memory here and every attempt gets a fresh reader.
func replayable(body any) (func() any, error) {
	switch b := body.(type) {
	case io.Reader:
		buf, err := io.ReadAll(b)
		if err != nil {
			return nil, transport.NewEncodingError("failed to read request body", err)
		}
		return func() any { return buf }, nil

	case *transport.MultipartForm:
		if b == nil {
			return func() any { return nil }, nil
		}
		contents := make([][]byte, len(b.Files))
		for i, file := range b.Files {
			if file.Content == nil {
				continue
			}
			buf, err := io.ReadAll(file.Content)
			if err != nil {
				return nil, transport.NewEncodingError(fmt.Sprintf("failed to read form file %s", file.FileName), err)
			}
			contents[i] = buf
		}
		return func() any {
			form := &transport.MultipartForm{
				Fields: b.Fields,
				Files:  make([]transport.FormFile, len(b.Files)),
			}
			for i, file := range b.Files {
				form.Files[i] = transport.FormFile{FieldName: file.FieldName, FileName: file.FileName}
				if contents[i] != nil {
					form.Files[i].Content = bytes.NewReader(contents[i])
				}
			}
			return form
		}, nil
	}
	return func() any { return body }, nil
}

package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeText = "text/plain; charset=utf-8"
)

// MultipartForm is a request body sent as multipart/form-data
type MultipartForm struct {
	Fields map[string]string
	Files  []FormFile
}

// FormFile is a single file part of a MultipartForm
type FormFile struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// encodeBody serializes data into a request body. contentType is the content type
// already requested by the caller, if any; the returned type is the one to send.
func encodeBody(data any, contentType string) (io.Reader, string, error) {
	switch body := data.(type) {
	case nil:
		return nil, contentType, nil
	case []byte:
		return bytes.NewReader(body), contentType, nil
	case string:
		return strings.NewReader(body), orDefault(contentType, contentTypeText), nil
	case io.Reader:
		return body, contentType, nil
	case url.Values:
		return strings.NewReader(body.Encode()), orDefault(contentType, contentTypeForm), nil
	case *MultipartForm:
		return encodeMultipart(body)
	}

	if isYAML(contentType) {
		out, err := yaml.Marshal(data)
		if err != nil {
			return nil, "", NewEncodingError("failed to marshal request body as yaml", err)
		}
		return bytes.NewReader(out), contentType, nil
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, "", NewEncodingError("failed to marshal request body", err)
	}
	return bytes.NewReader(out), orDefault(contentType, contentTypeJSON), nil
}

func encodeMultipart(form *MultipartForm) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, file := range form.Files {
		name := file.FileName
		if name == "" {
			name = "file"
		}
		part, err := writer.CreateFormFile(file.FieldName, name)
		if err != nil {
			return nil, "", NewEncodingError("failed to create form file", err)
		}
		if file.Content != nil {
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", NewEncodingError(fmt.Sprintf("failed to copy file %s", name), err)
			}
		}
	}

	for field, value := range form.Fields {
		if err := writer.WriteField(field, value); err != nil {
			return nil, "", NewEncodingError("failed to write form field", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", NewEncodingError("failed to close multipart writer", err)
	}

	return body, writer.FormDataContentType(), nil
}

func isYAML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "yaml")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"DeepfakeDetector/pkg/vision"
	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
)

// ClientMaxImageSize mirrors the upload UI limit.
const ClientMaxImageSize = 3 * 1024 * 1024

var (
	ErrEmptyImage      = errors.New("image payload is empty")
	ErrInvalidDataURL  = errors.New("malformed data URL")
	ErrInvalidBase64   = errors.New("image payload is not valid base64")
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrNotAnImage      = errors.New("uploaded file is not an image")
	base64Replacements = strings.NewReplacer("\n", "", "\r", "", "\t", "", " ", "")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	DecodeImagePayload(payload string) (vision.Image, error)
	ImageFromBytes(data []byte) (vision.Image, error)
	ValidateImage(img vision.Image, maxSize int64) error
	ConvertFileToDataURL(file *multipart.FileHeader) (string, error)
}

type utils struct{}

func New() IUtils {
	return &utils{}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// DecodeImagePayload accepts "data:<mime>;base64,<data>" or bare base64.
func (u *utils) DecodeImagePayload(payload string) (vision.Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return vision.Image{}, ErrEmptyImage
	}

	var mimeType string
	encoded := payload
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return vision.Image{}, ErrInvalidDataURL
		}

		params := strings.Split(payload[len("data:"):comma], ";")
		isBase64 := false
		for _, p := range params[1:] {
			if strings.EqualFold(strings.TrimSpace(p), "base64") {
				isBase64 = true
			}
		}
		if !isBase64 {
			return vision.Image{}, ErrInvalidDataURL
		}

		mimeType = strings.ToLower(strings.TrimSpace(params[0]))
		encoded = payload[comma+1:]
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return vision.Image{}, err
	}
	if len(data) == 0 {
		return vision.Image{}, ErrEmptyImage
	}

	if mimeType == "" {
		mimeType = sniffMIME(data)
	}

	return vision.Image{MIMEType: mimeType, Data: data}, nil
}

func (u *utils) ImageFromBytes(data []byte) (vision.Image, error) {
	if len(data) == 0 {
		return vision.Image{}, ErrEmptyImage
	}
	return vision.Image{MIMEType: sniffMIME(data), Data: data}, nil
}

// ValidateImage enforces the upload constraints server side. maxSize <= 0 skips the size check.
func (u *utils) ValidateImage(img vision.Image, maxSize int64) error {
	if maxSize > 0 && int64(len(img.Data)) > maxSize {
		return ErrFileTooLarge
	}
	if !strings.HasPrefix(img.MIMEType, "image/") {
		return ErrNotAnImage
	}
	return nil
}

func (u *utils) ConvertFileToDataURL(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = sniffMIME(fileBytes)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(fileBytes), nil
}

func decodeBase64(s string) ([]byte, error) {
	s = base64Replacements.Replace(s)
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, ErrInvalidBase64
}

func sniffMIME(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

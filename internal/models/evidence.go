package models

import (
	"path/filepath"
	"strings"
)

// MaxEvidenceSize - потолок размера файла-доказательства (10 MiB)
const MaxEvidenceSize int64 = 10 * 1024 * 1024

// EvidenceFile - единственное фото или видео, приложенное к заявлению.
// Живет только на клиенте между съемкой и загрузкой.
type EvidenceFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size возвращает размер файла в байтах
func (f *EvidenceFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// Extension возвращает расширение исходного имени файла без точки
func (f *EvidenceFile) Extension() string {
	ext := strings.TrimPrefix(filepath.Ext(f.Name), ".")
	if ext == "" {
		return "bin"
	}
	return strings.ToLower(ext)
}

func (f *EvidenceFile) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

func (f *EvidenceFile) IsVideo() bool {
	return strings.HasPrefix(f.ContentType, "video/")
}

// UploadResult - результат загрузки одного файла в объектное хранилище
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UploadBatch агрегирует результаты загрузки нескольких файлов.
// Успехи и ошибки собираются раздельно, порядок URLs совпадает с порядком файлов.
type UploadBatch struct {
	URLs   []string
	Errors []error
}

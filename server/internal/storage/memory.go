package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStorage - FileStorage в памяти процесса, используется без MinIO.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryStorage создает пустое хранилище объектов в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

// UploadFile сохраняет копию содержимого reader.
func (s *MemoryStorage) UploadFile(
	_ context.Context,
	objectKey string,
	reader io.Reader,
	_ int64,
	contentType string,
) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("ошибка чтения загружаемого файла: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = memoryObject{data: data, contentType: contentType}
	return nil
}

// DownloadFile возвращает содержимое объекта.
func (s *MemoryStorage) DownloadFile(_ context.Context, objectKey string) (io.ReadCloser, *ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[objectKey]
	if !ok {
		return nil, nil, ErrObjectNotFound
	}
	info := &ObjectInfo{Size: int64(len(obj.data)), ContentType: obj.contentType}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

// DeleteFile удаляет объект.
func (s *MemoryStorage) DeleteFile(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey)
	return nil
}

// Ping всегда успешен.
func (s *MemoryStorage) Ping(context.Context) error {
	return nil
}

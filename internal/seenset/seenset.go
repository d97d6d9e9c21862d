package seenset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSet is the durable record of source URLs this environment has already
// handled. It is append-only: entries are never removed, and every Add is
// flushed before it returns so an interrupted batch loses at most the URL
// currently being processed.
type FileSet struct {
	mu   sync.Mutex
	file *os.File
	seen map[string]struct{}
}

// Open loads the set from path, creating the file if needed. An unreadable
// file is an error: silently starting with an empty set would re-trigger
// work for every URL ever processed.
func Open(path string) (*FileSet, error) {

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create seen-set directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open seen-set file: %w", err)
	}

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		url := strings.TrimSpace(scanner.Text())
		if url != "" {
			seen[url] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read seen-set file: %w", err)
	}

	return &FileSet{file: file, seen: seen}, nil
}

func (s *FileSet) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[strings.TrimSpace(url)]
	return ok
}

func (s *FileSet) Add(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	url = strings.TrimSpace(url)
	if _, ok := s.seen[url]; ok {
		return nil
	}

	if _, err := s.file.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("failed to append to seen-set file: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync seen-set file: %w", err)
	}

	s.seen[url] = struct{}{}
	return nil
}

func (s *FileSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.seen)
}

func (s *FileSet) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.file.Close()
}

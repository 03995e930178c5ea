package config

import "strings"

// UploadPolicy is the subset of Config the gallery upload path needs.
type UploadPolicy struct {
	MaxSize      int64
	AllowedTypes []string
}

func (c *Config) UploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxSize:      c.Upload.MaxSize,
		AllowedTypes: c.Upload.AllowedTypes,
	}
}

// Allows reports whether the MIME type is accepted. Parameters such as
// "; charset=" are ignored.
func (p UploadPolicy) Allows(contentType string) bool {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, allowed := range p.AllowedTypes {
		if strings.EqualFold(ct, allowed) {
			return true
		}
	}
	return false
}

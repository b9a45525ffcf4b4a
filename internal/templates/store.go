// Package templates keeps named JSON templates as files in a directory. Each
// template is stored as <name>.json holding the content and its metadata.
package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	stderrors "errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/logging"
)

// DefaultType is the template type recorded when none is given.
const DefaultType = "json"

const ext = ".json"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeName replaces every character outside [a-zA-Z0-9_-] with '_'.
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// Info describes a stored template.
type Info struct {
	Name        string    `json:"name"`
	Filename    string    `json:"filename"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	ModifiedAt  time.Time `json:"modifiedAt,omitzero"`
}

// Template is the stored file. Content is kept as raw JSON; the designer and
// the editors store different shapes in it.
type Template struct {
	Type        string          `json:"_templateType"`
	Description string          `json:"_description"`
	SavedAt     string          `json:"_savedAt"`
	CreatedAt   string          `json:"_createdAt,omitempty"`
	Content     json.RawMessage `json:"content"`
}

// Store is a directory of templates. Writes are serialized.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewStore returns a store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

// checkName rejects names Save would never have produced, which also keeps
// lookups inside the store directory.
func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewTemplateError("template name is required", errors.ErrTemplateNameRequired)
	}
	if SanitizeName(name) != name {
		return errors.NewTemplateError(fmt.Sprintf("template %q not found", name), errors.ErrTemplateNotFound)
	}
	return nil
}

func notFound(name string) error {
	return errors.NewTemplateError(fmt.Sprintf("template %q not found", name), errors.ErrTemplateNotFound)
}

// List returns every template sorted by name. A file that cannot be read as
// a template is still listed, with the default type and no description.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return []Info{}, nil
		}
		return nil, errors.NewTemplateError("failed to list templates", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		infos = append(infos, s.info(ctx, entry))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *Store) info(ctx context.Context, entry os.DirEntry) Info {
	info := Info{
		Name:     strings.TrimSuffix(entry.Name(), ext),
		Filename: entry.Name(),
		Type:     DefaultType,
	}
	if stat, err := entry.Info(); err == nil {
		info.ModifiedAt = stat.ModTime()
		info.CreatedAt = stat.ModTime()
	}

	data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
	if err != nil || !gjson.ValidBytes(data) {
		logging.Ctx(ctx).Debug("Skipping template metadata", "file", entry.Name(), "error", err)
		return info
	}
	meta := gjson.GetManyBytes(data, "_templateType", "_description", "_createdAt")
	if t := meta[0].String(); t != "" {
		info.Type = t
	}
	info.Description = meta[1].String()
	if created, err := time.Parse(time.RFC3339Nano, meta[2].String()); err == nil {
		info.CreatedAt = created
	}
	return info
}

// Get returns the stored template.
func (s *Store) Get(ctx context.Context, name string) (Template, error) {
	data, err := s.Raw(ctx, name)
	if err != nil {
		return Template{}, err
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return Template{}, errors.NewTemplateError(fmt.Sprintf("template %q is corrupt", name), err)
	}
	if t.Type == "" {
		t.Type = DefaultType
	}
	return t, nil
}

// Raw returns the stored file as written.
func (s *Store) Raw(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, errors.NewTemplateError("failed to read template", err)
	}
	return data, nil
}

// Save stores content under the sanitized name and returns that name. An
// existing template of the same name is replaced but keeps its creation
// time.
func (s *Store) Save(ctx context.Context, name string, content json.RawMessage, templateType, description string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.NewTemplateError("name and content are required", errors.ErrTemplateNameRequired)
	}
	if isEmptyContent(content) {
		return "", errors.NewTemplateError("name and content are required", errors.ErrTemplateContentRequired)
	}
	if !json.Valid(content) {
		return "", errors.NewTemplateError("content is not valid JSON", errors.ErrInvalidJSON)
	}
	if templateType == "" {
		templateType = DefaultType
	}

	safeName := SanitizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(time.RFC3339Nano)
	t := Template{
		Type:        templateType,
		Description: description,
		SavedAt:     now,
		CreatedAt:   now,
		Content:     content,
	}
	if existing, err := os.ReadFile(s.path(safeName)); err == nil {
		if created := gjson.GetBytes(existing, "_createdAt").String(); created != "" {
			t.CreatedAt = created
		}
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", errors.NewTemplateError("failed to encode template", err)
	}
	if err := s.write(safeName, data); err != nil {
		return "", err
	}
	logging.Ctx(ctx).Info("Saved template", "name", safeName, "type", templateType)
	return safeName, nil
}

// Update replaces the content and description of an existing template. A
// nil content or description keeps the stored one; every other stored field
// is preserved.
func (s *Store) Update(ctx context.Context, name string, content json.RawMessage, description *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}
	if content != nil && !json.Valid(content) {
		return errors.NewTemplateError("content is not valid JSON", errors.ErrInvalidJSON)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return notFound(name)
		}
		return errors.NewTemplateError("failed to read template", err)
	}

	data, err = sjson.SetBytes(data, "_savedAt", s.now().UTC().Format(time.RFC3339Nano))
	if err == nil && content != nil {
		data, err = sjson.SetRawBytes(data, "content", content)
	}
	if err == nil && description != nil {
		data, err = sjson.SetBytes(data, "_description", *description)
	}
	if err != nil {
		return errors.NewTemplateError(fmt.Sprintf("template %q is corrupt", name), err)
	}

	if err := s.write(name, pretty.Pretty(data)); err != nil {
		return err
	}
	logging.Ctx(ctx).Info("Updated template", "name", name)
	return nil
}

// Delete removes the template.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return notFound(name)
		}
		return errors.NewTemplateError("failed to delete template", err)
	}
	logging.Ctx(ctx).Info("Deleted template", "name", name)
	return nil
}

func (s *Store) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.NewTemplateError("failed to create templates directory", err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return errors.NewTemplateError("failed to write template", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewTemplateError("failed to write template", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewTemplateError("failed to write template", err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.NewTemplateError("failed to write template", err)
	}
	return nil
}

func isEmptyContent(content json.RawMessage) bool {
	switch strings.TrimSpace(string(content)) {
	case "", "null", `""`, "false", "0":
		return true
	}
	return false
}

// Package schema validates JSON payloads against JSON Schema documents
// by translating them to CUE.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/jsonschema"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

// DefaultCacheSize is the number of compiled schemas kept by a Validator.
const DefaultCacheSize = 64

// closednessMsg is the CUE message for a field rejected by a closed struct.
const closednessMsg = "field not allowed"

// Validator implements ports.Validator. Compiled schemas are cached by
// content hash.
//
// A cue.Context is not safe for concurrent use, so all work is serialized.
type Validator struct {
	mu    sync.Mutex
	ctx   *cue.Context
	cache *lru.Cache[string, cue.Value]
}

// NewValidator creates a validator caching up to size compiled schemas.
func NewValidator(size int) *Validator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, cue.Value](size)
	return &Validator{
		ctx:   cuecontext.New(),
		cache: cache,
	}
}

// Compile checks that schema is a usable JSON Schema and caches it.
func (v *Validator) Compile(schema []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, err := v.compile(schema)
	return err
}

// Validate checks data against schema and collects every violation.
// An error is returned only when the schema or the data cannot be parsed.
func (v *Validator) Validate(schema, data []byte) (domain.ValidationResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	compiled, err := v.compile(schema)
	if err != nil {
		return domain.ValidationResult{}, err
	}

	doc := v.ctx.CompileBytes(data, cue.Filename("data.json"))
	if err := doc.Err(); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("%w: data: %v", domain.ErrMalformedFrame, err)
	}

	err = compiled.Unify(doc).Validate(cue.Concrete(true))
	if err == nil {
		return domain.ValidationResult{Valid: true}, nil
	}
	return domain.ValidationResult{Valid: false, Errors: formatErrors(err)}, nil
}

// compile returns the cached CUE value for schema. Must hold v.mu.
func (v *Validator) compile(schema []byte) (cue.Value, error) {
	sum := sha256.Sum256(schema)
	key := hex.EncodeToString(sum[:])
	if compiled, ok := v.cache.Get(key); ok {
		return compiled, nil
	}

	raw := v.ctx.CompileBytes(schema, cue.Filename("schema.json"))
	if err := raw.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", domain.ErrSchemaCompile, err)
	}

	file, err := jsonschema.Extract(raw, &jsonschema.Config{})
	if err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", domain.ErrSchemaCompile, err)
	}

	compiled := v.ctx.BuildFile(file)
	if err := compiled.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", domain.ErrSchemaCompile, err)
	}

	v.cache.Add(key, compiled)
	return compiled, nil
}

// formatErrors renders CUE errors as "data/<path> <message>" lines, plus a
// summary naming every field rejected by a closed object.
func formatErrors(err error) []string {
	var (
		lines []string
		extra []string
		seen  = make(map[string]bool)
	)

	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		path := e.Path()

		line := "data"
		if len(path) > 0 {
			line += "/" + strings.Join(path, "/")
		}
		line += " " + msg

		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)

		if strings.Contains(msg, closednessMsg) && len(path) > 0 {
			extra = append(extra, path[len(path)-1])
		}
	}

	if len(extra) > 0 {
		lines = append(lines, "data must NOT have additional properties: "+strings.Join(extra, ", "))
	}
	return lines
}

var _ ports.Validator = (*Validator)(nil)

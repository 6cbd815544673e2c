// Package metadata loads service declarations from YAML and turns them into
// the container's configuration.
//
//	services:
//	  logger:
//	    className: FileLogger
//	  mailer:
//	    className: SmtpMailer
//	    dependencyList: [config, logger]
//	  pool:
//	    loaderClassName: PoolLoader
//	  user:
//	    settable: true
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-container/framework/class"
	"github.com/km-arc/go-container/framework/container"
)

// Service declares how one service is built. A service needs a class, a
// loader class, or the settable flag.
type Service struct {
	ClassName       string   `yaml:"className" validate:"required_without_all=LoaderClassName Settable"`
	LoaderClassName string   `yaml:"loaderClassName"`
	DependencyList  []string `yaml:"dependencyList" validate:"excluded_with=LoaderClassName,dive,required"`
	Settable        bool     `yaml:"settable"`
}

// Metadata is a parsed services document.
type Metadata struct {
	Services map[string]Service `yaml:"services" validate:"dive,keys,required,endkeys"`
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes and validates a services document. Unknown keys are
// rejected.
func Parse(data []byte) (*Metadata, error) {
	m := &Metadata{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	if m.Services == nil {
		m.Services = map[string]Service{}
	}
	if err := validate.Struct(m); err != nil {
		return nil, newValidationError(err)
	}
	return m, nil
}

// Load reads path from fsys. A missing file yields empty metadata.
func Load(fsys fs.FS, path string) (*Metadata, error) {
	data, err := fs.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Metadata{Services: map[string]Service{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return Parse(data)
}

// Merge overlays other onto m; declarations in other replace those in m.
func (m *Metadata) Merge(other *Metadata) {
	if other == nil {
		return
	}
	if m.Services == nil {
		m.Services = make(map[string]Service, len(other.Services))
	}
	for name, svc := range other.Services {
		m.Services[name] = svc
	}
}

// Definitions converts the document to the container's configuration.
func (m *Metadata) Definitions() container.Definitions {
	defs := make(container.Definitions, len(m.Services))
	for name, svc := range m.Services {
		defs[name] = container.Definition{
			ClassName:       svc.ClassName,
			LoaderClassName: svc.LoaderClassName,
			Dependencies:    svc.DependencyList,
			Settable:        svc.Settable,
		}
	}
	return defs
}

// Unregistered lists the services whose class or loader class is missing
// from classes, sorted.
func (m *Metadata) Unregistered(classes *class.Registry) []string {
	var out []string
	for name, svc := range m.Services {
		for _, cn := range []string{svc.ClassName, svc.LoaderClassName} {
			if cn != "" && !classes.Has(cn) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

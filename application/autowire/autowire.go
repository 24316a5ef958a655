package autowire

// Struct-tag dependency injection over the component container.
// A field tagged `infra:"dep:<name>"` is resolved by component name
// and assigned; a trailing '?' marks the dependency optional. Every
// successful assignment is also appended to the component's declared
// dependencies so start ordering follows the wiring.

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/taskdeck/taskdeck/application/core"
)

type depAdder interface {
	AddDependencies(...string)
}

// InjectAll wires every registered component. Failures are collected
// so one broken tag does not hide the rest.
func InjectAll(c *core.Container) error {
	var errs []string
	for name, comp := range c.ListRegistered() {
		if err := Inject(c, comp); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("autowire errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Inject wires one component's tagged fields from the container.
func Inject(c *core.Container, comp core.Component) error {
	if comp == nil {
		return nil
	}
	val := reflect.ValueOf(comp)
	if val.Kind() != reflect.Ptr {
		return nil
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return nil
	}
	adder, _ := comp.(depAdder)

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, optional, ok := parseTag(field.Tag.Get("infra"))
		if !ok {
			continue
		}
		resolved, err := c.Resolve(name)
		if err != nil {
			if optional {
				continue
			}
			return fmt.Errorf("resolve %s failed: %w", name, err)
		}
		fv := val.Field(i)
		if !fv.CanSet() {
			return fmt.Errorf("field %s not settable (must be exported)", field.Name)
		}
		if err := assign(fv, resolved); err != nil {
			return fmt.Errorf("assign %s -> field %s failed: %w", name, field.Name, err)
		}
		if adder != nil {
			adder.AddDependencies(name)
		}
	}
	return nil
}

func parseTag(tag string) (name string, optional, ok bool) {
	if !strings.HasPrefix(tag, "dep:") {
		return "", false, false
	}
	name = strings.TrimPrefix(tag, "dep:")
	if strings.HasSuffix(name, "?") {
		optional = true
		name = strings.TrimSuffix(name, "?")
	}
	name = strings.TrimSpace(name)
	return name, optional, name != ""
}

func assign(dst reflect.Value, src interface{}) error {
	sv := reflect.ValueOf(src)
	if dst.Kind() == reflect.Interface {
		if sv.Type().Implements(dst.Type()) {
			dst.Set(sv)
			return nil
		}
		return fmt.Errorf("%s does not implement %s", sv.Type(), dst.Type())
	}
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	if sv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("incompatible types: %s -> %s", sv.Type(), dst.Type())
}

package providers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/config"
)

// Kinds are the component kinds catalog files can declare.
//
//	# catalog.yaml
//	- kind: static   # the resolved options themselves
//	  name: banner
//	  options: {text: "{1}|welcome"}
//	- kind: env      # an environment variable
//	  name: region
//	  options: {key: AWS_REGION, default: eu-west-1}
//	- kind: log      # a child of the application logger
//	  name: audit-log
//	  options: {prefix: audit}
func Kinds() catalog.Kinds {
	return catalog.Kinds{
		"static": {
			Dependencies: []string{catalog.OptionsDependency},
			Factory: func(_ context.Context, deps []any) (any, error) {
				return deps[0], nil
			},
		},
		"env": {
			Dependencies: []string{catalog.OptionsDependency},
			Factory: func(_ context.Context, deps []any) (any, error) {
				opts, err := options(deps[0])
				if err != nil {
					return nil, err
				}
				key, _ := opts["key"].(string)
				if key == "" {
					return nil, fmt.Errorf("env: options.key is required")
				}
				def, _ := opts["default"].(string)
				if v := config.Get(key, def); v != "" {
					return v, nil
				}
				return nil, nil
			},
		},
		"log": {
			Dependencies: []string{LoggerComponent, catalog.OptionsDependency},
			Factory: func(_ context.Context, deps []any) (any, error) {
				logger, err := catalog.Arg[*log.Logger](deps, 0)
				if err != nil {
					return nil, err
				}
				opts, err := options(deps[1])
				if err != nil {
					return nil, err
				}
				prefix, _ := opts["prefix"].(string)
				if prefix == "" {
					return logger, nil
				}
				return logger.WithPrefix(logger.GetPrefix() + "/" + prefix), nil
			},
		},
	}
}

// options returns the resolved options as a map; absent options are empty.
func options(v any) (map[string]any, error) {
	switch o := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return o, nil
	default:
		return nil, fmt.Errorf("options must be a mapping, got %T", v)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sargunv/jvl/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect jvl's configuration",
	}
	cmd.AddCommand(newConfigPrintCommand())
	cmd.AddCommand(newConfigSchemaCommand())
	return cmd
}

func newConfigPrintCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective jvl.json, resolving auto-discovery if --config is not given",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return &exitError{code: 2, msg: fmt.Sprintf("cannot determine current directory: %v", err)}
			}
			cfg, path, _, err := loadConfigForCheck(configPath, cwd)
			if err != nil {
				return &exitError{code: 2, msg: fmt.Sprintf("failed to load config: %v", err)}
			}
			out := configPrintOutput{
				Path:   path,
				Config: rawifyConfig(cfg),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return &exitError{code: 2, msg: err.Error()}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

type configPrintOutput struct {
	Path   string        `json:"path"`
	Config rawConfigView `json:"config"`
}

// rawConfigView mirrors jvl.json's on-disk shape, since config.Config
// itself intentionally carries no JSON tags (see internal/config).
type rawConfigView struct {
	SchemaURL string             `json:"schemaUrl,omitempty"`
	Files     []string           `json:"files"`
	Schemas   []rawSchemaMapping `json:"schemas,omitempty"`
	Strict    bool               `json:"strict,omitempty"`
}

type rawSchemaMapping struct {
	URL   string   `json:"url,omitempty"`
	Path  string   `json:"path,omitempty"`
	Files []string `json:"files"`
}

func rawifyConfig(cfg config.Config) rawConfigView {
	view := rawConfigView{
		SchemaURL: cfg.SchemaURL,
		Files:     cfg.Files,
		Strict:    cfg.Strict,
	}
	for _, m := range cfg.Schemas {
		view.Schemas = append(view.Schemas, rawSchemaMapping{URL: m.URL, Path: m.Path, Files: m.Files})
	}
	return view
}

func newConfigSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema that describes jvl.json itself",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configJSONSchema)
			return nil
		},
	}
}

// configJSONSchema describes jvl.json's own shape, so editors can offer
// completion and hover for jvl.json the same way jvl offers it for the
// files jvl.json governs. jvl has no schema-reflection dependency in its
// stack (the corpus carries none that generates 2020-12 output from Go
// struct tags), so this is hand-written rather than derived from
// config.Config at build time — see DESIGN.md.
const configJSONSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://jvl.dev/schemas/jvl-config.json",
  "title": "jvl configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "$schema": {
      "type": "string",
      "description": "Reference to this schema, for editor tooling."
    },
    "schemaUrl": {
      "type": "string",
      "description": "Default schema (path or URL) applied to files not matched by any entry in \"schemas\"."
    },
    "strict": {
      "type": "boolean",
      "description": "Error on files with no resolvable schema instead of skipping them. Defaults to false.",
      "default": false
    },
    "files": {
      "type": "array",
      "description": "Glob patterns (relative to this file's directory) selecting which files \"jvl check\" considers, in order, with \"!\"-prefixed patterns excluding.",
      "items": { "type": "string" }
    },
    "schemas": {
      "type": "array",
      "description": "Ordered schema-to-file mappings. The first mapping whose \"files\" pattern matches a given file wins.",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "oneOf": [
          { "required": ["url", "files"] },
          { "required": ["path", "files"] }
        ],
        "properties": {
          "url": { "type": "string", "description": "Remote schema URL." },
          "path": { "type": "string", "description": "Local schema file path, relative to this file's directory." },
          "files": {
            "type": "array",
            "description": "Glob patterns this mapping applies to.",
            "items": { "type": "string" }
          }
        }
      }
    }
  }
}`

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattdef/dampen-sub004/pkg/codegen"
	"github.com/mattdef/dampen-sub004/pkg/ir"
)

func newBuildCommand() *cobra.Command {
	var out string
	var pkg string
	var funcName string
	var modelJSON string
	var modelName string

	cmd := &cobra.Command{
		Use:   "build <document.ui.json>",
		Short: "Compile a document to Go source",
		Long: `Generates a Go builder function from a serialized IR document. Bindings are
resolved statically against the model prototype; any binding that cannot be
resolved fails the build. The generated source is validated by re-parsing
before it is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0], out, pkg, funcName, modelJSON, modelName)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "ui_gen.go", "Output file for the generated source")
	cmd.Flags().StringVar(&pkg, "package", "main", "Package name of the generated file")
	cmd.Flags().StringVar(&funcName, "func", "BuildUI", "Name of the generated builder function")
	cmd.Flags().StringVarP(&modelJSON, "model-json", "m", "", "Path to a JSON model prototype (required)")
	cmd.Flags().StringVar(&modelName, "model-name", "Model", "Name of the emitted model type")
	cmd.MarkFlagRequired("model-json")

	return cmd
}

func runBuild(docPath, out, pkg, funcName, modelJSON, modelName string) error {
	src, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", docPath, err)
	}
	doc, perr := ir.JSONParser{}.Parse(docPath, src)
	if perr != nil {
		return perr
	}

	protoSrc, err := os.ReadFile(modelJSON)
	if err != nil {
		return fmt.Errorf("read model prototype: %w", err)
	}
	model, err := codegen.ModelFromJSON(protoSrc)
	if err != nil {
		return err
	}

	art, err := codegen.Generate(doc, codegen.Options{
		Package:   pkg,
		Func:      funcName,
		Model:     model,
		EmitModel: true,
		ModelName: modelName,
	})
	if err != nil {
		return err
	}

	if err := art.WriteFile(out); err != nil {
		return err
	}
	log.Printf("✅ wrote %s (%d bytes)", out, len(art.Source))
	return nil
}

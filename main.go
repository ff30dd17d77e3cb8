package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/misokaze/relgen/internal/config"
	"github.com/misokaze/relgen/internal/gen"
	"github.com/misokaze/relgen/internal/naming"
)

var version = "dev"

func main() {
	sourceFlag := flag.String("source", "", "source file of model structs (default: $GOFILE)")
	destFlag := flag.String("destination", "", "output directory (default: source file's directory)")
	configFlag := flag.String("config", "", "path to relgen.toml (default: ./relgen.toml if present)")
	tableFlag := flag.String("table", "", "table name override for a single-struct source file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("relgen", version)
		return
	}

	plan, err := resolvePlan(*sourceFlag, *destFlag, *configFlag, *tableFlag)
	if err != nil {
		log.Fatal(err)
	}

	for _, src := range plan.Sources {
		outPath, err := generate(src, plan)
		if err != nil {
			log.Fatalf("%s: %v", src.Path, err)
		}
		fmt.Printf("relgen: wrote %s\n", outPath)
	}
}

func init() {
	log.SetFlags(0)
	log.SetPrefix("relgen: ")
}

// resolvePlan merges the config file (if any) with command line flags.
// Flags win over config values.
func resolvePlan(source, dest, configPath, table string) (config.Plan, error) {
	var plan config.Plan

	if configPath == "" {
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			configPath = config.DefaultFileName
		}
	}
	if configPath != "" {
		var err error
		plan, err = config.Load(configPath)
		if err != nil {
			return plan, err
		}
	}

	if source == "" && len(plan.Sources) == 0 {
		source = os.Getenv("GOFILE")
		if source == "" {
			return plan, errors.New("-source flag, relgen.toml, or GOFILE is required")
		}
	}
	if source != "" {
		src := config.Source{Path: source}
		if table != "" {
			src.Tables = map[string]string{"": table}
		}
		plan.Sources = []config.Source{src}
	}
	if dest != "" {
		plan.Destination = dest
	}
	if plan.Destination == "" {
		plan.Destination = filepath.Dir(plan.Sources[0].Path)
	}
	return plan, nil
}

func generate(src config.Source, plan config.Plan) (string, error) {
	infos, err := gen.Parse(src.Path)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}
	if len(infos) == 0 {
		return "", errors.New("no model structs found")
	}

	for _, info := range infos {
		info.TableName = naming.TableName(info.Name)
		if t, ok := src.Tables[info.Name]; ok {
			info.TableName = t
		} else if t, ok := src.Tables[""]; ok && len(infos) == 1 {
			// -table flag applies only to single-struct files.
			info.TableName = t
		}
	}

	opt, err := renderOption(src.Path, plan)
	if err != nil {
		return "", err
	}
	opt.PeerInfos, err = parsePeers(src.Path)
	if err != nil {
		return "", err
	}

	out, err := gen.RenderFile(infos, opt)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	if err := os.MkdirAll(plan.Destination, 0o755); err != nil { //nolint:gosec // output dir must be traversable
		return "", fmt.Errorf("mkdir %s: %w", plan.Destination, err)
	}

	base := strings.TrimSuffix(filepath.Base(src.Path), ".go")
	outPath := filepath.Join(plan.Destination, base+"_gen.go")
	if err := os.WriteFile(outPath, out, 0o644); err != nil { //nolint:gosec // generated code should be world-readable
		return "", fmt.Errorf("write %s: %w", outPath, err)
	}
	return outPath, nil
}

// parsePeers parses the other model files in the source file's directory so
// the renderer can look up primary keys and columns of relation targets.
func parsePeers(sourcePath string) ([]*gen.StructInfo, error) {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(sourcePath), "*.go"))
	if err != nil {
		return nil, err
	}

	var peers []*gen.StructInfo
	for _, m := range matches {
		if m == sourcePath ||
			strings.HasSuffix(m, "_gen.go") ||
			strings.HasSuffix(m, "_test.go") {
			continue
		}
		infos, err := gen.Parse(m)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", m, err)
		}
		peers = append(peers, infos...)
	}
	return peers, nil
}

// renderOption decides whether output lands in the source package or in a
// separate destination package. For a separate package the source package's
// import path is resolved by walking up to the nearest go.mod.
func renderOption(sourcePath string, plan config.Plan) (gen.RenderOption, error) {
	srcDir, err := filepath.Abs(filepath.Dir(sourcePath))
	if err != nil {
		return gen.RenderOption{}, err
	}
	destDir, err := filepath.Abs(plan.Destination)
	if err != nil {
		return gen.RenderOption{}, err
	}
	if srcDir == destDir {
		return gen.RenderOption{}, nil
	}

	importPath, err := resolveImportPath(srcDir)
	if err != nil {
		return gen.RenderOption{}, err
	}
	pkg := plan.Package
	if pkg == "" {
		pkg = filepath.Base(destDir)
	}
	return gen.RenderOption{DestPkg: pkg, SourceImport: importPath}, nil
}

// resolveImportPath finds the import path of dir by locating the enclosing
// go.mod and joining its module path with the relative directory.
func resolveImportPath(dir string) (string, error) {
	modDir := dir
	for {
		if _, err := os.Stat(filepath.Join(modDir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(modDir)
		if parent == modDir {
			return "", fmt.Errorf("no go.mod found above %s", dir)
		}
		modDir = parent
	}

	data, err := os.ReadFile(filepath.Join(modDir, "go.mod"))
	if err != nil {
		return "", err
	}
	modulePath := ""
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "module "); ok {
			modulePath = strings.TrimSpace(after)
			break
		}
	}
	if modulePath == "" {
		return "", fmt.Errorf("no module directive in %s/go.mod", modDir)
	}

	rel, err := filepath.Rel(modDir, dir)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return modulePath, nil
	}
	return modulePath + "/" + filepath.ToSlash(rel), nil
}

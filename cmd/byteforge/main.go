package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/cmd/byteforge/internal/bootstrap"
	"github.com/ridasaidd/byteforge-sub002/internal/compiler"
	"github.com/ridasaidd/byteforge-sub002/internal/components"
	"github.com/ridasaidd/byteforge-sub002/internal/cssgen"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
)

var moduleBuilder = bootstrap.BuildModule

var errUsage = errors.New("usage: byteforge <migrate|compile|css|inspect|import-theme|rebuild|publish|serve> [flags]")

type command func(ctx context.Context, args []string, out io.Writer) error

var commands = map[string]command{
	"migrate":      runMigrate,
	"compile":      runCompile,
	"css":          runCSS,
	"inspect":      runInspect,
	"import-theme": runImportTheme,
	"rebuild":      runRebuild,
	"publish":      runPublish,
	"serve":        runServe,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("byteforge: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
	return cmd(ctx, args[1:], out)
}

// moduleFlags registers the flags shared by commands that need a module.
func moduleFlags(fs *flag.FlagSet) *bootstrap.Options {
	opts := &bootstrap.Options{Migrate: true}
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&opts.EnvFile, "env-file", ".env", "Env file loaded before BYTEFORGE_* overrides")
	return opts
}

func withModule(ctx context.Context, opts *bootstrap.Options, fn func(*bootstrap.Module) error) error {
	module, err := moduleBuilder(ctx, *opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()
	return fn(module)
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	opts := moduleFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withModule(ctx, opts, func(m *bootstrap.Module) error {
		if m.DB == nil {
			return fmt.Errorf("migrate requires a configured database")
		}
		fmt.Fprintln(out, "migrations applied")
		return nil
	})
}

func runCompile(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	opts := moduleFlags(fs)
	pageID := fs.String("page-id", "", "ID of a stored page to compile")
	pageFile := fs.String("page", "", "Page document JSON to compile without storing it")
	headerFile := fs.String("header", "", "Header document JSON used with -page")
	footerFile := fs.String("footer", "", "Footer document JSON used with -page")
	site := fs.String("site", "", "Site ID used with -page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withModule(ctx, opts, func(m *bootstrap.Module) error {
		var (
			doc *compiler.Document
			err error
		)
		switch {
		case *pageID != "":
			id, parseErr := uuid.Parse(*pageID)
			if parseErr != nil {
				return fmt.Errorf("parse page-id: %w", parseErr)
			}
			doc, err = m.Module.Compile(ctx, id)
		case *pageFile != "":
			input, buildErr := fileCompileInput(*site, *pageFile, *headerFile, *footerFile)
			if buildErr != nil {
				return buildErr
			}
			doc, err = m.Module.Container().Compiler().Compile(ctx, input)
		default:
			return fmt.Errorf("compile requires -page-id or -page")
		}
		if err != nil {
			return err
		}
		return writeJSON(out, doc)
	})
}

func fileCompileInput(site, pageFile, headerFile, footerFile string) (compiler.Input, error) {
	var input compiler.Input
	if site != "" {
		id, err := uuid.Parse(site)
		if err != nil {
			return input, fmt.Errorf("parse site: %w", err)
		}
		input.SiteID = id
	}
	page, err := readDocument(pageFile)
	if err != nil {
		return input, err
	}
	input.Body = fragmentOf(page)
	if root, ok := page["root"].(map[string]any); ok {
		if props, ok := root["props"].(map[string]any); ok {
			root = props
		}
		input.Root = root
	}
	if headerFile != "" {
		header, err := readDocument(headerFile)
		if err != nil {
			return input, err
		}
		fragment := fragmentOf(header)
		input.Header.Override = &fragment
	}
	if footerFile != "" {
		footer, err := readDocument(footerFile)
		if err != nil {
			return input, err
		}
		fragment := fragmentOf(footer)
		input.Footer.Override = &fragment
	}
	return input, nil
}

func fragmentOf(doc map[string]any) compiler.Fragment {
	fragment := compiler.Fragment{}
	if content, ok := doc["content"].([]any); ok {
		fragment.Content = content
	}
	if zones, ok := doc["zones"].(map[string]any); ok {
		fragment.Zones = zones
	}
	return fragment
}

// runCSS renders the stylesheet of one document without touching storage.
func runCSS(_ context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("css", flag.ContinueOnError)
	treeFile := fs.String("tree", "", "Editor document JSON")
	themeFile := fs.String("theme", "", "theme.json manifest providing tokens")
	variables := fs.Bool("variables", false, "Prepend the :root variables block")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *treeFile == "" {
		return fmt.Errorf("css requires -tree")
	}
	doc, err := readDocument(*treeFile)
	if err != nil {
		return err
	}
	var tokens map[string]any
	if *themeFile != "" {
		manifest, err := themes.LoadManifest(*themeFile)
		if err != nil {
			return err
		}
		tokens = manifest.Tokens
	}

	css := cssgen.Generate(components.ParseTree(doc).Content, tokens)
	if *variables {
		css = cssgen.Join(cssgen.GenerateVariables(tokens), css)
	}
	_, err = io.WriteString(out, css)
	return err
}

func runInspect(_ context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	treeFile := fs.String("tree", "", "Editor document JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *treeFile == "" {
		return fmt.Errorf("inspect requires -tree")
	}
	doc, err := readDocument(*treeFile)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, renderTree(components.ParseTree(doc)))
	return err
}

func runImportTheme(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import-theme", flag.ContinueOnError)
	opts := moduleFlags(fs)
	manifestFile := fs.String("manifest", "", "theme.json manifest")
	site := fs.String("site", "", "Site ID; empty imports a global theme")
	activate := fs.Bool("activate", false, "Activate the imported theme")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *manifestFile == "" {
		return fmt.Errorf("import-theme requires -manifest")
	}
	siteID := uuid.Nil
	if *site != "" {
		id, err := uuid.Parse(*site)
		if err != nil {
			return fmt.Errorf("parse site: %w", err)
		}
		siteID = id
	}
	manifest, err := themes.LoadManifest(*manifestFile)
	if err != nil {
		return err
	}

	return withModule(ctx, opts, func(m *bootstrap.Module) error {
		theme, err := m.Module.Themes().ImportManifest(ctx, siteID, manifest)
		if err != nil {
			return err
		}
		if *activate {
			if theme, err = m.Module.Themes().ActivateTheme(ctx, theme.ID); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "theme %s %s (%s) active=%t\n", theme.Name, theme.Version, theme.ID, theme.IsActive)
		return nil
	})
}

func runRebuild(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("rebuild", flag.ContinueOnError)
	opts := moduleFlags(fs)
	site := fs.String("site", "", "Site ID to rebuild")
	if err := fs.Parse(args); err != nil {
		return err
	}
	siteID, err := uuid.Parse(*site)
	if err != nil {
		return fmt.Errorf("parse site: %w", err)
	}
	return withModule(ctx, opts, func(m *bootstrap.Module) error {
		result, err := m.Module.Rebuild(ctx, siteID)
		if err != nil {
			return err
		}
		return writeJSON(out, result)
	})
}

func runPublish(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	opts := moduleFlags(fs)
	theme := fs.String("theme", "", "Theme ID to publish")
	if err := fs.Parse(args); err != nil {
		return err
	}
	themeID, err := uuid.Parse(*theme)
	if err != nil {
		return fmt.Errorf("parse theme: %w", err)
	}
	return withModule(ctx, opts, func(m *bootstrap.Module) error {
		validation, err := m.Module.Validate(ctx, themeID)
		if err != nil {
			return err
		}
		if !validation.Ready() {
			return fmt.Errorf("theme %s is missing sections %v", themeID, validation.MissingSections)
		}
		result, err := m.Module.Publish(ctx, themeID)
		if err != nil {
			return err
		}
		return writeJSON(out, result)
	})
}

func runServe(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	opts := moduleFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withModule(ctx, opts, func(m *bootstrap.Module) error {
		if m.Module.Container().Scheduler() == nil {
			return fmt.Errorf("serve requires features.scheduler")
		}
		m.Module.Start()
		fmt.Fprintln(out, "rebuild scheduler running")
		<-ctx.Done()
		return nil
	})
}

func readDocument(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

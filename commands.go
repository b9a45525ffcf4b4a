package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"

	"github.com/mcncl/jsonbench/internal/designer"
	"github.com/mcncl/jsonbench/internal/differ"
	"github.com/mcncl/jsonbench/internal/errors"
	"github.com/mcncl/jsonbench/internal/formatter"
	"github.com/mcncl/jsonbench/internal/jsonpath"
	"github.com/mcncl/jsonbench/internal/logging"
	"github.com/mcncl/jsonbench/internal/models"
	"github.com/mcncl/jsonbench/internal/parser"
	"github.com/mcncl/jsonbench/internal/server"
	"github.com/mcncl/jsonbench/internal/templates"
)

func parseText(c *Context, text string) (models.JSONValue, error) {
	var ir models.IntermediateRepresentation
	var err error
	if c.Config.Lenient {
		ir, err = parser.ParseLenient(text)
	} else {
		ir, err = parser.ParseString(text)
	}
	return ir.Root, err
}

// PathCmd prints the path of the value under a cursor.
type PathCmd struct {
	File   string `arg:"" optional:"" help:"JSON file. Reads stdin when omitted." type:"path"`
	Offset int    `help:"Byte offset of the cursor." default:"-1"`
	Line   int    `help:"1-based cursor line, used with --column."`
	Column int    `help:"1-based cursor column in characters." default:"1"`
	Value  bool   `help:"Also print the value at the path."`
	Path   string `help:"Print the value at this path, e.g. $.a[0], instead of resolving a cursor." short:"p"`
}

func (cmd *PathCmd) Run(c *Context) error {
	text, err := readInput(c, cmd.File)
	if err != nil {
		return err
	}
	if _, err := parseText(c, text); err != nil {
		return err
	}
	if c.Config.Lenient {
		if text, err = jsonpath.Standardize(text); err != nil {
			return err
		}
	}

	if cmd.Path != "" {
		path, err := jsonpath.ParsePath(cmd.Path)
		if err != nil {
			return err
		}
		raw, found := jsonpath.Lookup(text, path)
		if !found {
			return errors.NewPathError(fmt.Sprintf("no value at %s", path), nil)
		}
		return writeOutput(c, "", raw)
	}

	var path jsonpath.Path
	var ok bool
	switch {
	case cmd.Offset >= 0:
		path, ok = jsonpath.Resolve(text, cmd.Offset)
	case cmd.Line > 0:
		path, ok = jsonpath.ResolveAt(text, cmd.Line, cmd.Column)
	default:
		return errors.NewPathError("either --offset or --line is required", nil)
	}
	if !ok {
		return errors.NewPathError("no value at the cursor", nil)
	}

	out := path.String()
	if cmd.Value {
		if raw, found := jsonpath.Lookup(text, path); found {
			out += "\t" + raw
		}
	}
	return writeOutput(c, "", out)
}

// FormatCmd pretty-prints or minifies a document.
type FormatCmd struct {
	File   string `arg:"" optional:"" help:"JSON file. Reads stdin when omitted." type:"path"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
	Indent int    `help:"Spaces per level. Defaults to the configured indent." default:"-1"`
	Minify bool   `help:"Strip all insignificant whitespace." short:"m"`
	Color  bool   `help:"Colorize the output for a terminal."`
}

func (cmd *FormatCmd) Run(c *Context) error {
	text, err := readInput(c, cmd.File)
	if err != nil {
		return err
	}
	indent := c.Config.Indent
	if cmd.Indent >= 0 {
		indent = min(cmd.Indent, formatter.MaxIndent)
	}

	f := formatter.NewFormatter(indent).WithLenient(c.Config.Lenient)
	var out string
	if cmd.Minify {
		out, err = f.Minify(text)
	} else {
		out, err = f.Format(text)
	}
	if err != nil {
		return err
	}
	if cmd.Color && cmd.Output == "" {
		out = formatter.Colorize(out)
	}
	return writeOutput(c, cmd.Output, out)
}

// DiffCmd compares two documents.
type DiffCmd struct {
	Left       string `arg:"" help:"Left (original) JSON file." type:"existingfile"`
	Right      string `arg:"" help:"Right (changed) JSON file." type:"existingfile"`
	Mode       string `help:"Comparison mode." enum:"structural,naive" default:"structural"`
	Positional bool   `help:"Compare array elements index for index."`
	NoModified bool   `help:"Report changed values as a removal plus an addition." name:"no-modifications"`
	MaxDepth   int    `help:"Stop descending below this depth. Zero means unlimited." default:"-1"`
	Inline     bool   `help:"Mark changed characters inside modified lines (naive mode)."`
	JSON       bool   `help:"Print the result as JSON." name:"json"`
}

func (cmd *DiffCmd) Run(c *Context) error {
	left, err := parser.ReadFile(cmd.Left)
	if err != nil {
		return err
	}
	right, err := parser.ReadFile(cmd.Right)
	if err != nil {
		return err
	}

	var result any
	var lines []differ.Line
	var stats differ.Stats
	if cmd.Mode == "naive" {
		diff, err := differ.DiffLines(string(left), string(right), differ.LineOptions{
			Inline:  cmd.Inline || c.Config.Diff.Inline,
			Lenient: c.Config.Lenient,
		})
		if err != nil {
			return err
		}
		result, lines, stats = diff, diff.Lines, diff.Stats
	} else {
		opts := differ.OptionsFromConfig(c.Config.Diff)
		if cmd.Positional {
			opts.ArrayMethod = differ.ArrayPositional
		}
		if cmd.NoModified {
			opts.ShowModifications = false
		}
		if cmd.MaxDepth >= 0 {
			opts.MaxDepth = cmd.MaxDepth
		}
		diff, err := differ.DiffTexts(string(left), string(right), opts, c.Config.Lenient)
		if err != nil {
			return err
		}
		if diff.Circular {
			logging.Ctx(c).Warn("Circular reference detected, repeated containers are marked [Circular]")
		}
		result, lines, stats = diff, diff.Lines(c.Config.Indent), diff.Stats
	}

	if cmd.JSON {
		out, err := json.MarshalIndent(result, "", strings.Repeat(" ", c.Config.Indent))
		if err != nil {
			return errors.NewOutputError("failed to encode diff", err)
		}
		return writeOutput(c, "", string(out))
	}
	return writeOutput(c, "", renderLines(lines, stats))
}

// renderLines prints a unified view: unchanged lines are indented, removed
// lines start with '-', added lines with '+'.
func renderLines(lines []differ.Line, stats differ.Stats) string {
	var sb strings.Builder
	for _, line := range lines {
		switch line.Classification {
		case differ.Same:
			fmt.Fprintf(&sb, "  %s\n", line.LeftContent)
		case differ.Added:
			fmt.Fprintf(&sb, "+ %s\n", line.RightContent)
		case differ.Removed:
			fmt.Fprintf(&sb, "- %s\n", line.LeftContent)
		case differ.Modified:
			if line.LeftContent != "" {
				fmt.Fprintf(&sb, "- %s\n", line.LeftContent)
			}
			if line.RightContent != "" {
				fmt.Fprintf(&sb, "+ %s\n", line.RightContent)
			}
		}
	}
	fmt.Fprintf(&sb, "%d same, %d added, %d removed, %d modified",
		stats.Same, stats.Added, stats.Removed, stats.Modified)
	return sb.String()
}

// PatchCmd groups the patch subcommands.
type PatchCmd struct {
	Make  PatchMakeCmd  `cmd:"" help:"Print the patch that turns LEFT into RIGHT."`
	Apply PatchApplyCmd `cmd:"" help:"Apply a patch to a document."`
}

// PatchMakeCmd creates an RFC 6902 or RFC 7386 patch.
type PatchMakeCmd struct {
	Left       string `arg:"" type:"existingfile"`
	Right      string `arg:"" type:"existingfile"`
	Merge      bool   `help:"Create an RFC 7386 merge patch instead of an RFC 6902 patch."`
	Positional bool   `help:"Compare array elements index for index."`
}

func (cmd *PatchMakeCmd) Run(c *Context) error {
	left, err := parser.ReadFile(cmd.Left)
	if err != nil {
		return err
	}
	right, err := parser.ReadFile(cmd.Right)
	if err != nil {
		return err
	}

	var patch []byte
	if cmd.Merge {
		patch, err = differ.MakeMergePatch(left, right)
	} else {
		opts := differ.OptionsFromConfig(c.Config.Diff)
		if cmd.Positional {
			opts.ArrayMethod = differ.ArrayPositional
		}
		patch, err = differ.MakePatch(left, right, opts)
	}
	if err != nil {
		return err
	}
	return writeOutput(c, "", string(patch))
}

// PatchApplyCmd applies a patch.
type PatchApplyCmd struct {
	Document string `arg:"" type:"existingfile"`
	Patch    string `arg:"" type:"existingfile"`
	Merge    bool   `help:"Treat PATCH as an RFC 7386 merge patch."`
	Output   string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *PatchApplyCmd) Run(c *Context) error {
	doc, err := parser.ReadFile(cmd.Document)
	if err != nil {
		return err
	}
	patch, err := parser.ReadFile(cmd.Patch)
	if err != nil {
		return err
	}

	var out []byte
	if cmd.Merge {
		out, err = differ.ApplyMergePatch(doc, patch)
	} else {
		out, err = differ.ApplyPatch(doc, patch)
	}
	if err != nil {
		return err
	}

	formatted, err := formatter.NewFormatter(c.Config.Indent).Format(string(out))
	if err != nil {
		return err
	}
	return writeOutput(c, cmd.Output, formatted)
}

// DesignCmd groups the designer subcommands.
type DesignCmd struct {
	Import DesignImportCmd `cmd:"" help:"Derive a designer structure from a JSON document."`
	Export DesignExportCmd `cmd:"" help:"Serialize a designer structure to JSON."`
	Edit   DesignEditCmd   `cmd:"" help:"Apply a batch of tree edits to a designer structure."`
	Preset DesignPresetCmd `cmd:"" help:"Print a built-in structure."`
}

// DesignImportCmd prints the structure of a document.
type DesignImportCmd struct {
	File   string `arg:"" optional:"" help:"JSON file. Reads stdin when omitted." type:"path"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *DesignImportCmd) Run(c *Context) error {
	text, err := readInput(c, cmd.File)
	if err != nil {
		return err
	}
	value, err := parseText(c, text)
	if err != nil {
		return err
	}
	structure, err := designer.Import(value, nil)
	if err != nil {
		return err
	}
	return writeStructure(c, cmd.Output, structure)
}

func writeStructure(c *Context, path string, structure designer.Structure) error {
	out, err := json.MarshalIndent(structure, "", strings.Repeat(" ", max(c.Config.Indent, 1)))
	if err != nil {
		return errors.NewOutputError("failed to encode structure", err)
	}
	return writeOutput(c, path, string(out))
}

// DesignExportCmd serializes a structure file or a saved designer template.
type DesignExportCmd struct {
	File     string `arg:"" optional:"" help:"Structure file. Reads stdin when omitted." type:"path"`
	Template string `help:"Read the structure from this saved template instead." short:"t"`
	KeyCase  string `help:"Rewrite keys: snake, camel, lower_camel or kebab."`
	Output   string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *DesignExportCmd) Run(c *Context) error {
	var data []byte
	if cmd.Template != "" {
		tpl, err := templates.NewStore(c.Config.Templates.Dir).Get(c, cmd.Template)
		if err != nil {
			return err
		}
		data = tpl.Content
	} else {
		text, err := readInput(c, cmd.File)
		if err != nil {
			return err
		}
		data = []byte(text)
	}
	// Saved templates may wrap the structure in a content member
	if content := gjson.GetBytes(data, "content"); content.IsObject() && content.Get("data").Exists() {
		data = []byte(content.Raw)
	}

	structure, err := designer.LoadStructure(data, nil)
	if err != nil {
		return err
	}

	keyCase := designer.KeyCase(c.Config.Designer.KeyCase)
	if cmd.KeyCase != "" {
		keyCase = designer.KeyCase(cmd.KeyCase)
	}
	if !keyCase.Valid() {
		return errors.NewInputError(fmt.Sprintf("unknown key case %q", keyCase), nil)
	}
	value := designer.Serialize(structure.Data, structure.RootType, designer.SerializeOptions{KeyCase: keyCase})
	return writeOutput(c, cmd.Output, formatter.Stringify(value, c.Config.Indent))
}

// DesignEditCmd applies edits to a structure. Without a structure file it
// starts from an empty object root.
type DesignEditCmd struct {
	Edits  string `arg:"" help:"JSON array of edits." type:"existingfile"`
	File   string `arg:"" optional:"" help:"Structure file. Starts from an empty tree when omitted." type:"path"`
	JSON   bool   `help:"Print the serialized document instead of the structure." name:"json"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *DesignEditCmd) Run(c *Context) error {
	data, err := parser.ReadFile(cmd.Edits)
	if err != nil {
		return err
	}
	var edits []designer.Edit
	if err := json.Unmarshal(data, &edits); err != nil {
		return errors.NewInputError("edits must be a JSON array of edit objects", err)
	}

	structure := designer.Structure{RootType: designer.TypeObject}
	if cmd.File != "" {
		raw, err := parser.ReadFile(cmd.File)
		if err != nil {
			return err
		}
		if structure, err = designer.LoadStructure(raw, nil); err != nil {
			return err
		}
	}

	tree := designer.NewTreeFrom(structure)
	results, err := tree.Apply(edits)
	if err != nil {
		return err
	}
	log := logging.Ctx(c)
	for i, r := range results {
		if !r.Changed {
			log.Warn("Edit changed nothing", "index", i, "op", r.Op)
			continue
		}
		log.Debug("Applied edit", "index", i, "op", r.Op, "id", r.ID)
	}

	if cmd.JSON {
		value := tree.Serialize(designer.SerializeOptions{KeyCase: designer.KeyCase(c.Config.Designer.KeyCase)})
		return writeOutput(c, cmd.Output, formatter.Stringify(value, c.Config.Indent))
	}
	return writeStructure(c, cmd.Output, tree.Structure())
}

// DesignPresetCmd prints a built-in structure.
type DesignPresetCmd struct {
	Name string `arg:"" help:"Preset name: package, config or api."`
	JSON bool   `help:"Print the serialized document instead of the structure." name:"json"`
}

func (cmd *DesignPresetCmd) Run(c *Context) error {
	structure, err := designer.Preset(cmd.Name, nil)
	if err != nil {
		return err
	}
	if cmd.JSON {
		value := designer.Serialize(structure.Data, structure.RootType, designer.SerializeOptions{})
		return writeOutput(c, "", formatter.Stringify(value, c.Config.Indent))
	}
	return writeStructure(c, "", structure)
}

// TemplatesCmd groups the template store subcommands.
type TemplatesCmd struct {
	List   TemplatesListCmd   `cmd:"" help:"List saved templates."`
	Get    TemplatesGetCmd    `cmd:"" help:"Print a template's content."`
	Save   TemplatesSaveCmd   `cmd:"" help:"Save a document as a template."`
	Delete TemplatesDeleteCmd `cmd:"" help:"Delete a template."`
}

func store(c *Context) *templates.Store {
	return templates.NewStore(c.Config.Templates.Dir)
}

// TemplatesListCmd lists templates.
type TemplatesListCmd struct{}

func (cmd *TemplatesListCmd) Run(c *Context) error {
	infos, err := store(c).List(c)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return writeOutput(c, "", "No templates saved.")
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tMODIFIED\tDESCRIPTION")
	for _, info := range infos {
		modified := "-"
		if !info.ModifiedAt.IsZero() {
			modified = humanize.Time(info.ModifiedAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Type, modified, info.Description)
	}
	if err := w.Flush(); err != nil {
		return errors.NewOutputError("failed to write template list", err)
	}
	return writeOutput(c, "", sb.String())
}

// TemplatesGetCmd prints a template.
type TemplatesGetCmd struct {
	Name string `arg:""`
	Raw  bool   `help:"Print the stored file including metadata."`
}

func (cmd *TemplatesGetCmd) Run(c *Context) error {
	if cmd.Raw {
		data, err := store(c).Raw(c, cmd.Name)
		if err != nil {
			return err
		}
		return writeOutput(c, "", string(data))
	}
	tpl, err := store(c).Get(c, cmd.Name)
	if err != nil {
		return err
	}
	out, err := formatter.NewFormatter(c.Config.Indent).Format(string(tpl.Content))
	if err != nil {
		return err
	}
	return writeOutput(c, "", out)
}

// TemplatesSaveCmd saves a document.
type TemplatesSaveCmd struct {
	Name        string `arg:""`
	File        string `arg:"" optional:"" help:"JSON file. Reads stdin when omitted." type:"path"`
	Type        string `help:"Template type, such as json or designer." default:"json"`
	Description string `help:"Short description."`
}

func (cmd *TemplatesSaveCmd) Run(c *Context) error {
	text, err := readInput(c, cmd.File)
	if err != nil {
		return err
	}
	if _, err := parseText(c, text); err != nil {
		return err
	}
	content := []byte(text)
	if c.Config.Lenient {
		if content, err = parser.Standardize(content); err != nil {
			return err
		}
	}

	name, err := store(c).Save(c, cmd.Name, content, cmd.Type, cmd.Description)
	if err != nil {
		return err
	}
	return writeOutput(c, "", fmt.Sprintf("Template %q saved successfully", name))
}

// TemplatesDeleteCmd deletes a template.
type TemplatesDeleteCmd struct {
	Name string `arg:""`
}

func (cmd *TemplatesDeleteCmd) Run(c *Context) error {
	if err := store(c).Delete(c, cmd.Name); err != nil {
		return err
	}
	return writeOutput(c, "", fmt.Sprintf("Template %q deleted successfully", cmd.Name))
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr         string `help:"Listen address. Defaults to the configured address or $PORT."`
	TemplatesDir string `help:"Directory holding saved templates." type:"path"`
}

func (cmd *ServeCmd) Run(c *Context) error {
	if cmd.Addr != "" {
		c.Config.Server.Addr = cmd.Addr
	}
	if cmd.TemplatesDir != "" {
		c.Config.Templates.Dir = cmd.TemplatesDir
	}
	return server.New(c.Config, store(c)).Run(c)
}

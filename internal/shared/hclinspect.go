package shared

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ResourceBlock is one `resource` block found in a Terraform config.
// For azapi_resource blocks, ARMType carries the value of the block's
// literal `type` attribute when it is a plain string.
type ResourceBlock struct {
	Kind    string
	Label   string
	ARMType string
}

// CheckHCLSyntax parses the configuration and returns one message per
// syntax diagnostic. An empty slice means the config parses cleanly.
func CheckHCLSyntax(src string, filename string) []string {
	parser := hclparse.NewParser()
	_, diags := parser.ParseHCL([]byte(src), filename)
	var messages []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		if diag.Subject != nil {
			msg = fmt.Sprintf("%s (%s:%d,%d)", msg, filename, diag.Subject.Start.Line, diag.Subject.Start.Column)
		}
		messages = append(messages, msg)
	}
	return messages
}

// ExtractResourceBlocks lists the resource blocks declared in a
// Terraform configuration. Configs that fail to parse yield whatever
// blocks parsed before the failure.
func ExtractResourceBlocks(src string, filename string) []ResourceBlock {
	parser := hclparse.NewParser()
	file, _ := parser.ParseHCL([]byte(src), filename)
	if file == nil {
		return nil
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil
	}

	var blocks []ResourceBlock
	for _, block := range body.Blocks {
		if block.Type != "resource" || len(block.Labels) < 2 {
			continue
		}
		rb := ResourceBlock{Kind: block.Labels[0], Label: block.Labels[1]}
		if block.Labels[0] == "azapi_resource" {
			rb.ARMType = literalStringAttr(block.Body, "type")
		}
		blocks = append(blocks, rb)
	}
	return blocks
}

// ExtractResourceKinds returns the distinct resource kinds (first block
// label, e.g. azurerm_storage_account) in declaration order.
func ExtractResourceKinds(src string, filename string) []string {
	seen := map[string]struct{}{}
	var kinds []string
	for _, block := range ExtractResourceBlocks(src, filename) {
		if _, ok := seen[block.Kind]; ok {
			continue
		}
		seen[block.Kind] = struct{}{}
		kinds = append(kinds, block.Kind)
	}
	return kinds
}

// literalStringAttr evaluates an attribute with a nil context, so only
// literal values resolve; references and functions report "".
func literalStringAttr(body *hclsyntax.Body, name string) string {
	attr, ok := body.Attributes[name]
	if !ok {
		return ""
	}
	value, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || value.Type() != cty.String || value.IsNull() {
		return ""
	}
	return strings.TrimSpace(value.AsString())
}

// Package output encodes sort and group results.
//
// Every encoder first normalizes its input: engine nodes become
// {"id", "property", "items"} tables, items become their values, floats are
// rounded to six decimal places and map keys are ordered. Identical results
// therefore produce byte-identical output, which is what lets the state
// store compare renders by digest.
//
// # Formats
//
//   - json: compact or indented, keys sorted, HTML not escaped
//   - yaml: gopkg.in/yaml.v3, block style
//   - toml: pelletier/go-toml/v2; lists are wrapped in an "items" table and
//     nulls are dropped
//   - human: an indented tree with a header line per group
//
// # Usage Example
//
//	nodes := engine.GroupBy(items, keys...)
//	w := output.NewWriter(os.Stdout, output.FormatYAML, 2)
//	if err := w.Materialize(nodes); err != nil {
//	    return err
//	}
package output

// Package skill implements the skill registry: a name-keyed lookup of
// markdown documents (metadata plus body) that agents can invoke by
// name, loaded from project and user scope directories with project
// taking precedence on a name collision.
//
// Grounded on internal/command's markdown-with-YAML-frontmatter
// loading convention (same directory-walk-then-parse shape), but using
// gopkg.in/yaml.v3 for the frontmatter block instead of the line-by-line
// parser command.Executor hand-rolls, since a skill's frontmatter
// allows an arbitrary metadata map rather than command's fixed field
// set.
package skill

// Package mcp exposes the documentation index as a tool-calling server over
// stdio.
//
// Six tools are registered: index_docs, search_docs, get_doc_content,
// list_frameworks, resolve_framework and get_status. Handlers validate
// parameters, translate sentinel errors from the lower layers into protocol
// error codes, and format responses as indented JSON text.
//
// The protocol owns stdout, so nothing in this process may print there;
// logging goes to stderr.
package mcp

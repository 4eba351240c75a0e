// Package main hosts the embdr CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into Embdr API
// calls: submitting files, links, and streams for processing, watching
// resources until their thumbnails and image previews settle, browsing the
// local submission history, and configuration scaffolding. It centralizes
// configuration resolution, client construction, and structured logging setup
// so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending pkg/processr or
// the internal packages first, then surface it through dedicated commands or
// flags here.
package main

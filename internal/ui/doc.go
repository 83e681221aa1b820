// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the artifact collection:
//  1. [BrowseView] : Scroll the active collection view and switch between
//     all/mine/liked/top-liked slices
//  2. [DetailView] : Inspect a single artifact's full record
//  3. [ConfirmDeleteView] : Confirm removal of an owned artifact
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Collection loads and like submissions run as tea commands against the
// resource store, so the UI never blocks on the network.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, l, tab, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui

// Package manifest loads and validates offsetup project manifests.
//
// A manifest (offsetup.yml) declares a project's name and version, its
// application and per-platform dependencies, and the network ports it
// exposes. Resolve merges three layers into one immutable Manifest, in
// ascending precedence:
//
//  1. the YAML manifest file,
//  2. OFFSETUP_-prefixed environment variables mapped onto dotted
//     manifest key paths,
//  3. CLI overrides (debug, dry_run, and the install-priority list,
//     which replaces install_priority on every platform entry).
//
// Resolution and validation are deliberately separate steps: Resolve
// never runs the Validator, so consumers that act on a manifest without
// calling ValidateManifest accept an unvalidated one. The only
// cross-field invariant enforced is on Source: download and
// download_directory must be both present or both absent.
package manifest

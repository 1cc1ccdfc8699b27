// Package configs manages protoscope configuration files.
//
// Two scopes exist:
//
//   - User config: TOML at <UserConfigDir>/protoscope/config.toml holding a
//     generated user UUID (for audit attribution) and report preferences.
//   - Project config: TOML at <project>/.protoscope/project.toml holding the
//     project name and UUID. The .protoscope directory is discovered by
//     walking up from the working directory and also holds the audit log.
//     Commands work without a project.
package configs

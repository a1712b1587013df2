/*
Package config manages configuration parsing and validation for tonprep.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |           |           |
	+-----+-----+ +---+----+ +----+----+
	|   YAML    | |  JSON  | |   HCL   |
	|  Parser   | | Parser | | Parser  |
	+-----------+ +--------+ +---------+

🎯 Purpose:
- Manages configuration loading and parsing
- Validates configuration values and fills defaults
- Provides type-safe config access
- Supports multiple config formats

🔄 Flow:
1. Reads configuration from file (missing file falls back to defaults)
2. Parses format-specific syntax
3. Validates configuration values
4. Provides validated config to other packages

⚡ Key Responsibilities:
- Configuration parsing
- Default value management (mapfile, output dir, jobs, ffmpeg)
- Type safety
- Format abstraction

🤝 Interfaces:
- Parser: Format-specific parsing
- Config: Type-safe config access

📝 Design Philosophy:
The config package is the source of truth for all configuration. Defaults
mirror the historical script behavior: map.csv next to the working
directory, ./out as output root, one transfer job per CPU core, and
conservative ffmpeg options that TonUINO boxes are known to play. Command
line flags override whatever the file says; the merge happens in the CLI
layer, not here.

🔍 Example:

	cfg, err := config.Load(ctx, "tonprep.yaml")
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	fmt.Println(cfg.OutputDir)
*/
package config

package datastore

// BBCode is one row of the forum's bbcodes table.
// Ids are assigned by the seeder, never by the database.
type BBCode struct {
	ID                int    `gorm:"column:bbcode_id;primaryKey;autoIncrement:false"`
	Tag               string `gorm:"column:bbcode_tag;type:varchar(16);not null;default:''"`
	Helpline          string `gorm:"column:bbcode_helpline;type:varchar(255);not null;default:''"`
	DisplayOnPosting  bool   `gorm:"column:display_on_posting;not null;default:false"`
	Match             string `gorm:"column:bbcode_match;type:text;not null"`
	Template          string `gorm:"column:bbcode_tpl;type:text;not null"`
	FirstPassMatch    string `gorm:"column:first_pass_match;type:text;not null"`
	FirstPassReplace  string `gorm:"column:first_pass_replace;type:text;not null"`
	SecondPassMatch   string `gorm:"column:second_pass_match;type:text;not null"`
	SecondPassReplace string `gorm:"column:second_pass_replace;type:text;not null"`
}

// ConfigEntry is one row of the forum's config table.
type ConfigEntry struct {
	Name      string `gorm:"column:config_name;primaryKey;type:varchar(255)"`
	Value     string `gorm:"column:config_value;type:varchar(255);not null;default:''"`
	IsDynamic bool   `gorm:"column:is_dynamic;not null;default:false"`
}

// MigrationRecord marks a migration as applied. Times are unix seconds.
// Records live in {prefix}abbc3_migrations, never in the forum's own
// migrations table, whose rows use a different encoding.
type MigrationRecord struct {
	Name      string `gorm:"column:migration_name;primaryKey;type:varchar(255)"`
	DependsOn string `gorm:"column:migration_depends_on;type:text;not null"` // comma separated
	StartTime int64  `gorm:"column:migration_start_time;not null;default:0"`
	EndTime   int64  `gorm:"column:migration_end_time;not null;default:0"`
}

package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			video_url TEXT NOT NULL DEFAULT '',
			video_name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'bodybuilding',
			duration REAL NOT NULL DEFAULT 0,
			muscularity_score INTEGER NOT NULL CHECK(muscularity_score BETWEEN 0 AND 100),
			symmetry_score INTEGER NOT NULL CHECK(symmetry_score BETWEEN 0 AND 100),
			conditioning_score INTEGER NOT NULL CHECK(conditioning_score BETWEEN 0 AND 100),
			posing_score INTEGER NOT NULL CHECK(posing_score BETWEEN 0 AND 100),
			aesthetics_score INTEGER NOT NULL CHECK(aesthetics_score BETWEEN 0 AND 100),
			overall_score INTEGER NOT NULL CHECK(overall_score BETWEEN 0 AND 100),
			measurements TEXT NOT NULL DEFAULT '{}',
			pose_scores TEXT NOT NULL DEFAULT '{}',
			detected_poses TEXT NOT NULL DEFAULT '[]',
			muscle_groups TEXT NOT NULL DEFAULT '{}',
			recommendations TEXT NOT NULL DEFAULT '[]',
			judge_notes TEXT NOT NULL DEFAULT '[]',
			vision_analysis TEXT,
			coaching_feedback TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

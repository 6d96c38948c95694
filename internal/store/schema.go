package store

// schemaSQLite creates the four logical tables on the embedded/test driver.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS work_items (
    id TEXT PRIMARY KEY,
    parent_id TEXT,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'todo',
    is_active INTEGER NOT NULL DEFAULT 1,
    priority TEXT NOT NULL DEFAULT 'medium',
    due_date TEXT,
    order_key TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS work_item_dependencies (
    work_item_id TEXT NOT NULL,
    depends_on_work_item_id TEXT NOT NULL,
    dependency_type TEXT NOT NULL DEFAULT 'finish-to-start',
    is_active INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (work_item_id, depends_on_work_item_id)
);

CREATE TABLE IF NOT EXISTS action_history (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    action_type TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    work_item_id TEXT,
    is_undone INTEGER NOT NULL DEFAULT 0,
    undone_at_action_id TEXT
);

CREATE TABLE IF NOT EXISTS undo_steps (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    action_id TEXT NOT NULL,
    step_order INTEGER NOT NULL,
    step_type TEXT NOT NULL,
    table_name TEXT NOT NULL,
    record_id TEXT NOT NULL,
    old_data TEXT NOT NULL DEFAULT '',
    new_data TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_work_items_parent ON work_items(parent_id);
CREATE INDEX IF NOT EXISTS idx_work_items_active_status ON work_items(is_active, status);
CREATE INDEX IF NOT EXISTS idx_work_item_deps_work_item ON work_item_dependencies(work_item_id);
CREATE INDEX IF NOT EXISTS idx_work_item_deps_depends_on ON work_item_dependencies(depends_on_work_item_id);
CREATE INDEX IF NOT EXISTS idx_action_history_created_at ON action_history(created_at);
CREATE INDEX IF NOT EXISTS idx_undo_steps_action ON undo_steps(action_id);
`

// schemaMySQL is the equivalent DDL for the production client-server driver:
// no AUTOINCREMENT keyword, explicit VARCHAR lengths, InnoDB for transactions.
const schemaMySQL = `
CREATE TABLE IF NOT EXISTS work_items (
    id VARCHAR(64) PRIMARY KEY,
    parent_id VARCHAR(64),
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    status VARCHAR(32) NOT NULL DEFAULT 'todo',
    is_active TINYINT NOT NULL DEFAULT 1,
    priority VARCHAR(32) NOT NULL DEFAULT 'medium',
    due_date VARCHAR(40),
    order_key VARCHAR(255) NOT NULL,
    created_at VARCHAR(40) NOT NULL,
    updated_at VARCHAR(40) NOT NULL,
    INDEX idx_work_items_parent (parent_id),
    INDEX idx_work_items_active_status (is_active, status)
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS work_item_dependencies (
    work_item_id VARCHAR(64) NOT NULL,
    depends_on_work_item_id VARCHAR(64) NOT NULL,
    dependency_type VARCHAR(32) NOT NULL DEFAULT 'finish-to-start',
    is_active TINYINT NOT NULL DEFAULT 1,
    PRIMARY KEY (work_item_id, depends_on_work_item_id),
    INDEX idx_work_item_deps_work_item (work_item_id),
    INDEX idx_work_item_deps_depends_on (depends_on_work_item_id)
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS action_history (
    id VARCHAR(64) PRIMARY KEY,
    created_at VARCHAR(40) NOT NULL,
    action_type VARCHAR(32) NOT NULL,
    description TEXT NOT NULL,
    work_item_id VARCHAR(64),
    is_undone TINYINT NOT NULL DEFAULT 0,
    undone_at_action_id VARCHAR(64),
    INDEX idx_action_history_created_at (created_at)
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS undo_steps (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    action_id VARCHAR(64) NOT NULL,
    step_order INT NOT NULL,
    step_type VARCHAR(16) NOT NULL,
    table_name VARCHAR(64) NOT NULL,
    record_id VARCHAR(160) NOT NULL,
    old_data TEXT NOT NULL,
    new_data TEXT NOT NULL,
    INDEX idx_undo_steps_action (action_id)
) ENGINE=InnoDB;
`

package db

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS companies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    owner TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    registration_number TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'approving',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS job_posts (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open',
    due_date DATE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (company_id) REFERENCES companies(id)
);

CREATE TABLE IF NOT EXISTS applications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    job_post_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'approving',
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (job_post_id) REFERENCES job_posts(id)
);

CREATE TABLE IF NOT EXISTS reviews (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (company_id) REFERENCES companies(id),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS notices (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Read models: one per resource, foreign keys flattened to names
CREATE VIEW IF NOT EXISTS users_view AS
    SELECT id, name, email, phone, created_at FROM users;

CREATE VIEW IF NOT EXISTS companies_view AS
    SELECT id, name, owner, phone, registration_number, status, created_at FROM companies;

CREATE VIEW IF NOT EXISTS job_posts_view AS
    SELECT p.id, p.title, c.name AS company, p.status, p.due_date,
           c.status AS company_status, p.company_id, p.created_at
    FROM job_posts p LEFT JOIN companies c ON c.id = p.company_id;

CREATE VIEW IF NOT EXISTS applications_view AS
    SELECT a.id, u.name AS applicant, p.title AS job_post, c.name AS company,
           a.status, a.applied_at, p.status AS post_status,
           a.user_id, a.job_post_id, a.created_at
    FROM applications a
    LEFT JOIN users u ON u.id = a.user_id
    LEFT JOIN job_posts p ON p.id = a.job_post_id
    LEFT JOIN companies c ON c.id = p.company_id;

CREATE VIEW IF NOT EXISTS reviews_view AS
    SELECT r.id, r.title, c.name AS company, u.name AS author, r.created_at, r.content,
           r.company_id, r.user_id
    FROM reviews r
    LEFT JOIN companies c ON c.id = r.company_id
    LEFT JOIN users u ON u.id = r.user_id;

CREATE VIEW IF NOT EXISTS notices_view AS
    SELECT id, title, created_at, content FROM notices;

-- Indexes
CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(status);
CREATE INDEX IF NOT EXISTS idx_job_posts_company ON job_posts(company_id);
CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id);
CREATE INDEX IF NOT EXISTS idx_applications_post ON applications(job_post_id);
CREATE INDEX IF NOT EXISTS idx_reviews_company ON reviews(company_id);
CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id);
`

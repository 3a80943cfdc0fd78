package db

const schema = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS users (
    id            uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
    username      text NOT NULL,
    email         text NOT NULL UNIQUE,
    password_hash text NOT NULL,
    avatar_url    text,
    bio           text,
    created_at    timestamptz NOT NULL DEFAULT NOW(),
    updated_at    timestamptz NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS media (
    id              uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
    media_type      text NOT NULL,
    title_zh        text NOT NULL,
    title_original  text,
    release_date    text,
    duration        text,
    year            text,
    poster_url      text,
    summary         text,
    staff_info      text,
    staff_actors    text[],
    staff_directors text[],
    directors       text[],
    actors          text[],
    networks        jsonb,
    rating          double precision NOT NULL DEFAULT 0,
    rating_douban   double precision NOT NULL DEFAULT 0,
    rating_imdb     double precision NOT NULL DEFAULT 0,
    rating_bangumi  double precision NOT NULL DEFAULT 0,
    rating_maoyan   double precision NOT NULL DEFAULT 0,
    created_at      timestamptz NOT NULL DEFAULT NOW(),
    updated_at      timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_media_kind_title_zh
    ON media (media_type, title_zh);
CREATE INDEX IF NOT EXISTS idx_media_kind_title_original
    ON media (media_type, title_original);

CREATE TABLE IF NOT EXISTS media_sources (
    id          uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
    media_id    uuid NOT NULL REFERENCES media(id) ON DELETE CASCADE,
    source_type text NOT NULL,
    source_id   text NOT NULL,
    source_url  text NOT NULL DEFAULT '',
    UNIQUE (source_type, source_id)
);

CREATE INDEX IF NOT EXISTS idx_media_sources_media
    ON media_sources (media_id);

CREATE TABLE IF NOT EXISTS collections (
    id         uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
    user_id    uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    media_id   uuid NOT NULL REFERENCES media(id) ON DELETE CASCADE,
    status     text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, media_id)
);

CREATE INDEX IF NOT EXISTS idx_collections_user_created
    ON collections (user_id, created_at DESC);
`

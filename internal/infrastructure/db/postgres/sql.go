package postgres

const eventColumns = `
id, initiator_id, category_id, title, annotation, description,
lat, lon, event_date, paid, participant_limit, request_moderation,
state, created_on, published_on, updated_at`

const insertEventSQL = `
INSERT INTO events (
  id, initiator_id, category_id, title, annotation, description,
  lat, lon, event_date, paid, participant_limit, request_moderation,
  state, created_on, published_on, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`

const getEventSQL = `SELECT` + eventColumns + `
FROM events WHERE id = $1
`

const selectEventForUpdateSQL = `SELECT` + eventColumns + `
FROM events WHERE id = $1
FOR UPDATE
`

const updateEventSQL = `
UPDATE events SET
  category_id=$2, title=$3, annotation=$4, description=$5,
  lat=$6, lon=$7, event_date=$8, paid=$9, participant_limit=$10,
  request_moderation=$11, state=$12, published_on=$13, updated_at=$14
WHERE id=$1
`

const listByInitiatorSQL = `SELECT` + eventColumns + `
FROM events
WHERE initiator_id = $1
ORDER BY created_on DESC, id ASC
LIMIT $2 OFFSET $3
`

const countConfirmedByEventsSQL = `
SELECT event_id, COUNT(*)
FROM participation_requests
WHERE status = 'CONFIRMED' AND event_id = ANY($1::uuid[])
GROUP BY event_id
`

// confirmedSubquery counts confirmed requests of the outer events row.
const confirmedSubquery = `(SELECT COUNT(*) FROM participation_requests pr
  WHERE pr.event_id = events.id AND pr.status = 'CONFIRMED')`

const requestColumns = `id, event_id, requester_id, status, created, updated_at`

const getRequestSQL = `SELECT ` + requestColumns + `
FROM participation_requests WHERE id = $1
`

const selectRequestForUpdateSQL = `SELECT ` + requestColumns + `
FROM participation_requests WHERE id = $1
FOR UPDATE
`

const selectRequestsByIDsSQL = `SELECT ` + requestColumns + `
FROM participation_requests
WHERE event_id = $1 AND id = ANY($2::uuid[])
ORDER BY id
FOR UPDATE
`

const listRequestsByRequesterSQL = `SELECT ` + requestColumns + `
FROM participation_requests
WHERE requester_id = $1
ORDER BY created ASC, id ASC
`

const listRequestsByEventSQL = `SELECT ` + requestColumns + `
FROM participation_requests
WHERE event_id = $1
ORDER BY created ASC, id ASC
`

const insertRequestSQL = `
INSERT INTO participation_requests (id, event_id, requester_id, status, created, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

const countConfirmedSQL = `
SELECT COUNT(*) FROM participation_requests
WHERE event_id = $1 AND status = 'CONFIRMED'
`

const existsActiveSQL = `
SELECT EXISTS (
  SELECT 1 FROM participation_requests
  WHERE requester_id = $1 AND event_id = $2 AND status <> 'CANCELED'
)
`

// updateStatusesSQL writes a whole batch in one statement.
const updateStatusesSQL = `
UPDATE participation_requests AS pr
SET status = u.status, updated_at = $3
FROM unnest($1::uuid[], $2::text[]) AS u(id, status)
WHERE pr.id = u.id
`

const userExistsSQL = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
const categoryExistsSQL = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`

const insertHitSQL = `
INSERT INTO endpoint_hits (app, uri, ip, ts) VALUES ($1, $2, $3, $4)
`

const countViewsUniqueSQL = `
SELECT q.uri, COUNT(DISTINCT h.ip)
FROM unnest($1::text[], $2::timestamptz[], $3::timestamptz[]) AS q(uri, start_ts, end_ts)
LEFT JOIN endpoint_hits h ON h.uri = q.uri AND h.ts BETWEEN q.start_ts AND q.end_ts
GROUP BY q.uri
`

const countViewsAllSQL = `
SELECT q.uri, COUNT(h.id)
FROM unnest($1::text[], $2::timestamptz[], $3::timestamptz[]) AS q(uri, start_ts, end_ts)
LEFT JOIN endpoint_hits h ON h.uri = q.uri AND h.ts BETWEEN q.start_ts AND q.end_ts
GROUP BY q.uri
`

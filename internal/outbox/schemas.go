package outbox

// activity.created and activity.deleted share the activity_events subject,
// so the schema requires only the fields common to both payloads.
const activityEventSchema = `{
  "type": "object",
  "title": "ActivityEvent",
  "properties": {
    "activity_id": {"type": "string"},
    "user_id": {"type": "string"},
    "activity_type": {"type": "string"},
    "distance_meters": {"type": "number"},
    "started_at": {"type": "string", "format": "date-time"},
    "source": {"type": "string"},
    "trust_score": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id"],
  "additionalProperties": false
}`

const allowanceRecomputedSchema = `{
  "type": "object",
  "title": "AllowanceRecomputed",
  "properties": {
    "user_id": {"type": "string"},
    "date": {"type": "string"},
    "earned_minutes": {"type": "integer"},
    "bonus_minutes": {"type": "integer"},
    "is_unlocked": {"type": "boolean"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "date", "earned_minutes", "bonus_minutes", "is_unlocked", "occurred_at"],
  "additionalProperties": false
}`

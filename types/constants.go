package types

// Collections
const (
	FIREBASE_USERS_COLLECTION           = "users"
	FIREBASE_POSTS_COLLECTION           = "posts"
	FIREBASE_SAVES_COLLECTION           = "saves"
	FIREBASE_SESSIONS_COLLECTION        = "sessions"
	FIREBASE_MESSAGING_TOKEN_COLLECTION = "messagingTokens"
)

// Fields present on every document
const (
	FIREBASE_FIELDS_ID         = "id"
	FIREBASE_FIELDS_CREATED_AT = "createdAt"
	FIREBASE_FIELDS_UPDATED_AT = "updatedAt"
)

// Suffix of the token array written next to every searchable text field
const FIREBASE_KEYWORDS_SUFFIX = "_keywords"

const (
	FIREBASE_USERS_FIELDS_ACCOUNT_ID = "accountId"
	FIREBASE_USERS_FIELDS_NAME       = "name"
	FIREBASE_USERS_FIELDS_USERNAME   = "username"
	FIREBASE_USERS_FIELDS_EMAIL      = "email"
	FIREBASE_USERS_FIELDS_IMAGE_URL  = "imageUrl"
	FIREBASE_USERS_FIELDS_IMAGE_ID   = "imageId"
	FIREBASE_USERS_FIELDS_BIO        = "bio"
)

const (
	FIREBASE_POSTS_FIELDS_CREATOR   = "creator"
	FIREBASE_POSTS_FIELDS_CAPTION   = "caption"
	FIREBASE_POSTS_FIELDS_LOCATION  = "location"
	FIREBASE_POSTS_FIELDS_TAGS      = "tags"
	FIREBASE_POSTS_FIELDS_IMAGE_URL = "imageUrl"
	FIREBASE_POSTS_FIELDS_IMAGE_ID  = "imageId"
	FIREBASE_POSTS_FIELDS_LIKES     = "likes"
)

const (
	FIREBASE_SAVES_FIELDS_USER = "user"
	FIREBASE_SAVES_FIELDS_POST = "post"
)

const (
	FIREBASE_SESSIONS_FIELDS_ACCOUNT_ID = "accountId"
	FIREBASE_SESSIONS_FIELDS_EXPIRES_AT = "expiresAt"
)

const FIREBASE_MESSAGING_TOKEN_FIELDS_TOKEN = "token"

// Storage
const FIREBASE_STORAGE_FILES_FOLDER = "files/"

// Session id that always resolves to the session of the caller
const CURRENT_SESSION = "current"

// Paging
const (
	RECENT_POSTS_LIMIT   = 20
	INFINITE_POSTS_LIMIT = 8
)

// Preview transforms used for every post and avatar image
const (
	PREVIEW_WIDTH   = 2000
	PREVIEW_HEIGHT  = 2000
	PREVIEW_GRAVITY = "top"
	PREVIEW_QUALITY = 100
)

// Uploads
const (
	MAX_UPLOAD_SIZE   = 5 * 1024 * 1024
	MAX_IMAGE_PIXELS  = 50_000_000
	UPLOAD_FORM_FIELD = "file"
)

// HTTP
const (
	SESSION_COOKIE_NAME      = "__session"
	CLOUD_TASKS_CLEANUP_PATH = "/tasks/cleanup"
)

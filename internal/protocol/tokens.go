package protocol

// Protocol tokens exchanged between BlueTrace peers. Cooperating
// implementations must agree on these byte-for-byte.
var (
	// Authentication handshake.
	InitiatingAuth    = []byte("BT_AUTH_INIT")
	ReadyToAuth       = []byte("BT_AUTH_READY")
	ExpectingUsername = []byte("BT_AUTH_UN")
	ExpectingPassword = []byte("BT_AUTH_PW")

	// Informative authentication outcomes relayed to the user verbatim.
	AuthenticationSuccess = []byte("Welcome to the BlueTrace simulator!")
	InvalidCredentials    = []byte("Invalid password. Please try again.")
	AccountNowBlocked     = []byte("Invalid password. Your account has been blocked. " +
		"Please try again later.")
	AccountIsBlocked = []byte("Your account is blocked due to multiple login failures. " +
		"Please try again later.")

	// Session commands.
	LogoutClient     = []byte("BT_AUTH_LOGOUT")
	DownloadTempID   = []byte("BT_TEMPID_DOWNLOAD")
	UploadContactLog = []byte("BT_LOG_UPLOAD")

	// Contact log upload sub-protocol.
	ReadyForLogUpload  = []byte("BT_LOG_READY")
	FinishedContactLog = []byte("BT_LOG_FINISHED")

	// Beacon exchange.
	SendingBeacon  = []byte("BT_BEACON_SEND")
	ReadyForBeacon = []byte("BT_BEACON_READY")
)

// MaxMessageSize bounds a single protocol message on the stream transport.
const MaxMessageSize = 1024

// MaxAuthAttempts is the total number of password submissions permitted per
// session, the first submission included.
const MaxAuthAttempts = 3

// TempIDLength is the number of digit characters in a temp ID.
const TempIDLength = 20

// TempIDAlphabet is the character set temp IDs are drawn from.
const TempIDAlphabet = "0123456789"

// BeaconVersion is the single-byte protocol version carried in beacon
// payloads.
const BeaconVersion = '1'

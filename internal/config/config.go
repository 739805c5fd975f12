package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Set with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Triangles/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Triangles"
	AppID             = "com.github.tartampluch.go-triangles"
	KeyringService    = "com.github.tartampluch.go-triangles"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "triangles.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW is -rw-------.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX is drwx------.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize sizes the one-shot error channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdRoot          = "triangles"
	CmdChart         = "chart DATE"
	CmdServe         = "serve"
	CmdVersion       = "version"
	FlagDebug        = "debug"
	FlagFormat       = "format"
	FlagFormatShort  = "f"
	FormatText       = "text"
	FormatJSON       = "json"
	FormatYAML       = "yaml"
	DescRoot         = "Numerology leaf charts for birth dates and address books"
	DescChart        = "Print the chart for a birth date (DD/MM/YYYY or YYYY-MM-DD)"
	DescServe        = "Serve the chart calendar and run the sync worker until interrupted"
	DescVersion      = "Print version and exit"
	FlagDescDebug    = "Log at debug level with source locations"
	FlagDescFormat   = "Output format: text|json|yaml"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Numerology Rules
// -----------------------------------------------------------------------------

const (
	// SlotCount is the number of base corners (and triangles) in a chart.
	SlotCount = 5

	// ReduceThreshold is the largest value kept as-is by a reduction.
	ReduceThreshold = 22

	// DigitBase is the radix used for digit sums.
	DigitBase = 10

	// MissionSeparator joins the three mission values.
	MissionSeparator = "; "

	// MonthOffset converts a time.Month (1-12) into the zero-based month
	// convention of calendar pickers, which is what the engine is fed with.
	MonthOffset = 1
)

// -----------------------------------------------------------------------------
// Environment Settings
// -----------------------------------------------------------------------------

const (
	EnvPrefix = "TRIANGLES_"
)

// -----------------------------------------------------------------------------
// Translation Keys
// -----------------------------------------------------------------------------

const (
	TKeyChartTitle      = "chart_title"       // Requires Date
	TKeyTriangle        = "chart_triangle"    // Requires Index, Name
	TKeySlotDay         = "slot_day"          //
	TKeySlotMonth       = "slot_month"        //
	TKeySlotYear        = "slot_year"         //
	TKeySlotFourth      = "slot_fourth_upper" //
	TKeySlotFifth       = "slot_fifth_upper"  //
	TKeyLblUpper        = "lbl_upper"
	TKeyLblLeftLower    = "lbl_left_lower"
	TKeyLblRightLower   = "lbl_right_lower"
	TKeyLblInnerLower   = "lbl_inner_lower"
	TKeyLblInnerLeft    = "lbl_inner_left_upper"
	TKeyLblInnerRight   = "lbl_inner_right_upper"
	TKeyLblMission      = "lbl_mission"
	TKeyEvtSummaryAge   = "event_summary_age"   // Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Name; birth-year event
)

// -----------------------------------------------------------------------------
// Defaults
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	SourceModeNone       = ""
	DefaultRefreshMin    = 60
	DefaultLanguage      = "en"
	DefaultReminderValue = 1
	UIDSalt              = "go-triangles-v1-" // Salt for deterministic UID generation
)

// Reminder Trigger (ISO-8601 durations)
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Triangles//Engine//EN"
	ICalCalName   = "Birth Charts"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gotriangles"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Date & Text Formats
// -----------------------------------------------------------------------------

const (
	// DateFormatInput is the day-first layout typed by users and shown in charts.
	DateFormatInput = "02/01/2006"

	// Date layouts used for parsing vCard BDAY fields and query parameters
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// Chart text formats
	FormatChartSummary = "%s: %s"
	FormatLabelLine    = "  %-18s %s\n"
	FormatDisplayDate  = "%02d/%02d/%04d"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout           = 30 * time.Second
	ShutdownTimeout       = 5 * time.Second
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 60 * time.Second
	RetryAfterSeconds     = "10"
	AllowedMethods        = "GET, HEAD"
	DefaultMaxSourceBytes = 16 << 20 // per address book
	SchemeHTTP            = "http"
	SchemeHTTPS           = "https"
	RouteRoot             = "/"
	RouteChart            = "/chart"
	QueryDate             = "date"
	AddrSeparator         = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// Address book media types. Plain and octet-stream cover .vcf files on WebDAV shares.
	AcceptVCard     = "text/vcard, text/directory;q=0.9, */*;q=0.1"
	MimeVCard       = "text/vcard"
	MimeXVCard      = "text/x-vcard"
	MimeDirectory   = "text/directory"
	MimeTextPlain   = "text/plain"
	MimeOctetStream = "application/octet-stream"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

const (
	ErrIndexOutOfRange = "corner index out of range"
	ErrLocalPathEmpty  = "local source selected without a file path"
	ErrWebURLEmpty     = "web source selected without a URL"
	ErrFetcherMissing  = "web source selected without a fetcher"
	ErrModeUnsupport   = "unknown source mode"
	ErrSettingsParse   = "configuration error: invalid environment settings"
	ErrIntervalRange   = "refresh interval must not be negative"
	ErrReminderUnit    = "reminder unit must be d, h or m"
	ErrReminderDir     = "reminder direction must be before or after"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrVCardParse      = "cannot open vCard source"
	ErrICalEncode      = "cannot encode chart calendar"
	ErrDateParse       = "unrecognized date"
	ErrDateRequired    = "date query parameter is required"
	ErrChartBuild      = "failed to build chart"
	ErrChartEncode     = "failed to encode chart"
	ErrFormatUnknown   = "unknown output format"
	ErrFetchStatus     = "address book server refused the request"
	ErrFetchRequest    = "cannot build address book request"
	ErrFetchNetwork    = "address book unreachable"
	ErrContentType     = "address book is not a vCard stream"
	ErrSourceTooLarge  = "address book exceeds the size limit"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "chart service failed"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Response Bodies
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Chart calendar not built yet, retry shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallback Text
// -----------------------------------------------------------------------------

const (
	FallbackSummaryAge   = "Chart: %s (%d)"
	FallbackSummaryBirth = "Chart: %s (birth)"
	FallbackName         = "Unknown"

	// StubVCalendar is served when no contact yields a chart.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncSuccess         = "Chart sync completed"
	MsgSyncStarted         = "Chart sync started"
	MsgSyncFailed          = "Chart sync failed"
	MsgSyncSkipped         = "No contact source configured, serving charts only"
	MsgSyncReq             = "Chart sync requested"
	MsgWorkerStart         = "Chart sync worker started"
	MsgWorkerStop          = "Chart sync worker stopped"
	MsgAppStop             = "Chart service stopped"
	MsgSkippedCard         = "Skipping unreadable vCard"
	MsgSkippedDate         = "Skipping unparseable BDAY"
	MsgSkippedNoYear       = "Skipping birthday without year"
	MsgGenSuccess          = "Chart calendar generated"
	MsgAppStarting         = "Starting chart service"
	MsgServerListen        = "Serving charts and calendar"
	MsgServerStop          = "Stopping HTTP server"
	MsgCacheUpdated        = "Served calendar replaced"
	MsgLocaleSkip          = "Ignoring embedded file outside locale pattern"
	MsgLocaleBadName       = "Ignoring locale file without language code"
	MsgLocaleLoaded        = "Locale loaded"
	MsgTransMissing        = "Translation unavailable"
	MsgPassFail            = "No keyring password for address book user"
	MsgLogWarning          = "Warning: %s at %s: %v\n"
	MsgBdayToday           = "Chart anniversary today"
	MsgCorners             = "Lower corner"
	MsgChartServed         = "Chart computed"
	MsgSyncFinished        = "Chart sync finished"
	MsgFetchStart          = "Requesting address book"
	MsgFetchRefused        = "Address book response rejected"
	MsgFetchOpen           = "Address book stream open"
	MsgCredentialsRejected = "Address book rejected the stored credentials"
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// slog Keys
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "charts_built"
	LogKeyToday     = "anniversaries_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyIndexOne  = "index_one"
	LogKeyIndexTwo  = "index_two"
	LogKeySlotOne   = "slot_one"
	LogKeySlotTwo   = "slot_two"
	LogKeyMission   = "mission"

	// Startup
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuiltAt = "built_at"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompApp        = "app"
	CompNumerology = "numerology"
	CompEngine     = "engine"
	CompServer     = "server"
	CompFetcher    = "fetcher"
	CompWorker     = "worker"
	CompMain       = "main"
	CompI18n       = "i18n"
)

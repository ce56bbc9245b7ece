package handler

type ContextKey string

var (
	RoleCtxKey   ContextKey = "role"
	SubCtxKey    ContextKey = "sub"
	MyInfoCtx    ContextKey = "myInfo"
	UserInfoCtx  ContextKey = "userInfo"
	TeacherCtx   ContextKey = "teacher"
	SubjectCtx   ContextKey = "subject"
	RoomCtx      ContextKey = "room"
	StudentCtx   ContextKey = "student"
	TimetableCtx ContextKey = "timetable"
)

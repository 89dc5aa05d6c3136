package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/integrity", handler.CheckIntegrity)
	mux.HandleFunc("POST /v1/backup", handler.CreateBackup)
	mux.HandleFunc("POST /v1/backup/restore", handler.RestoreBackup)
	mux.HandleFunc("GET /v1/backup/usage", handler.GetBackupUsage)
	mux.HandleFunc("GET /v1/export", handler.ExportData)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/users", handler.CreateUser)
	mux.HandleFunc("GET /v1/users", handler.ListUsers)
	mux.HandleFunc("GET /v1/users/{userID}", handler.GetUser)
	mux.HandleFunc("PUT /v1/users/{userID}", handler.UpdateUser)
	mux.HandleFunc("DELETE /v1/users/{userID}", handler.DeleteUser)

	mux.HandleFunc("POST /v1/groups", handler.CreateGroup)
	mux.HandleFunc("GET /v1/groups", handler.ListGroups)
	mux.HandleFunc("GET /v1/groups/{groupID}", handler.GetGroup)
	mux.HandleFunc("PUT /v1/groups/{groupID}", handler.UpdateGroup)
	mux.HandleFunc("DELETE /v1/groups/{groupID}", handler.DeleteGroup)
	mux.HandleFunc("POST /v1/groups/{groupID}/invite-code/rotate", handler.RotateInviteCode)
	mux.HandleFunc("GET /v1/groups/{groupID}/share", handler.GetGroupShareInfo)
	mux.HandleFunc("DELETE /v1/groups/{groupID}/members/{memberID}", handler.RemoveGroupMember)
	mux.HandleFunc("POST /v1/groups/{groupID}/leave", handler.LeaveGroup)

	mux.HandleFunc("GET /v1/join", handler.PreviewJoin)
	mux.HandleFunc("POST /v1/join", handler.Join)

	mux.HandleFunc("POST /v1/players", handler.CreatePlayer)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("POST /v1/players/{playerID}/groups/{groupID}", handler.AddPlayerToGroup)
	mux.HandleFunc("PUT /v1/players/{playerID}/stats", handler.UpdatePlayerStats)
	mux.HandleFunc("DELETE /v1/players/{playerID}", handler.DeletePlayer)

	mux.HandleFunc("POST /v1/groups/{groupID}/matches", handler.CreateMatch)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("PUT /v1/matches/{matchID}/status", handler.UpdateMatchStatus)
	mux.HandleFunc("DELETE /v1/matches/{matchID}", handler.DeleteMatch)

	mux.HandleFunc("POST /v1/groups/{groupID}/invitations", handler.CreateInvitation)
	mux.HandleFunc("GET /v1/groups/{groupID}/invitations", handler.ListInvitations)
	mux.HandleFunc("POST /v1/invitations/{invitationID}/revoke", handler.RevokeInvitation)

	mux.HandleFunc("GET /v1/settings", handler.ListSettings)
	mux.HandleFunc("GET /v1/settings/{settingID}", handler.GetSetting)
	mux.HandleFunc("PUT /v1/settings/{settingID}", handler.PutSetting)
	mux.HandleFunc("DELETE /v1/settings/{settingID}", handler.DeleteSetting)
}

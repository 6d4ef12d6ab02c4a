package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/permission"
	"github.com/suPer8Hu/mall-console/internal/route"
	"github.com/suPer8Hu/mall-console/internal/session"
)

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileResp struct {
	UID         string `json:"uid"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatarUrl"`
	StoreID     string `json:"storeId"`
	StoreName   string `json:"storeName"`
}

func profile(st session.State) profileResp {
	return profileResp{
		UID:         st.UID,
		Username:    st.Username,
		Nickname:    st.Nickname,
		DisplayName: st.DisplayName(),
		Role:        st.Role,
		AvatarURL:   st.AvatarURL,
		StoreID:     st.StoreID,
		StoreName:   st.StoreName,
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "username and password required")
		return
	}

	st, err := h.App.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) || errors.Is(err, session.ErrMissingRole) {
			common.Fail(c, http.StatusBadGateway, 50203, "login token not understood")
			return
		}
		failErr(c, err)
		return
	}
	common.OK(c, profile(st))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.App.Logout(c.Request.Context()); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, gin.H{"redirect": route.PathLogin})
}

func (h *Handler) Me(c *gin.Context) {
	common.OK(c, profile(h.App.Session.Snapshot()))
}

type updateProfileReq struct {
	Nickname  *string `json:"nickname"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

// UpdateProfile saves the profile upstream first; the session only takes what
// the backend accepted.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	ctx := c.Request.Context()
	saved, err := h.App.API.UpdateUserProfile(ctx, h.App.Session.Snapshot().UID, api.ProfileUpdate{
		Nickname:  req.Nickname,
		Phone:     req.Phone,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	var nickname, avatar *string
	if req.Nickname != nil {
		nickname = &saved.Nickname
	}
	if req.AvatarURL != nil {
		avatar = &saved.AvatarURL
	}
	if err := h.App.Session.UpdateProfile(ctx, nickname, avatar); err != nil {
		failErr(c, err)
		return
	}
	common.OK(c, profile(h.App.Session.Snapshot()))
}

type navigateResp struct {
	Kind    permission.DecisionKind `json:"kind"`
	Target  string                  `json:"target"`
	Route   *route.Match            `json:"route,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// Navigate runs the route guard for a from -> to transition.
func (h *Handler) Navigate(c *gin.Context) {
	to := c.Query("to")
	if to == "" {
		common.Fail(c, http.StatusBadRequest, 10003, "to is required")
		return
	}
	from := c.DefaultQuery("from", route.PathHome)

	d := h.App.Guard.BeforeEach(c.Request.Context(), from, to)
	if d.Kind == permission.Abort && d.Err != nil {
		if errors.Is(d.Err, permission.ErrUnknownView) {
			failErr(c, d.Err)
			return
		}
		common.OK(c, navigateResp{Kind: d.Kind, Target: d.Target, Message: apiclient.UserMessage(d.Err)})
		return
	}
	common.OK(c, navigateResp{Kind: d.Kind, Target: d.Target, Route: d.Match})
}

func (h *Handler) Routes(c *gin.Context) {
	perm := h.App.Permission.Snapshot()
	common.OK(c, gin.H{
		"menus":           perm.Menus,
		"routesLoaded":    perm.RoutesLoaded,
		"currentRole":     perm.CurrentRole,
		"addedRouteNames": perm.AddedRouteNames,
		"routes":          h.App.Guard.Table().Tree(),
	})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestFetchMenus_DecodesTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/menu/merchant" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"code":200,"data":[{"name":"goods","path":"goods","type":"parentView","routePath":"/goods","redirect":"/goods/list","children":[{"name":"goods-list","path":"goods/list","type":"view","routePath":"/goods/list","meta":{"title":"Goods"}}],"meta":{"title":"Goods"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(apiclient.New(srv.URL, time.Second))
	menus, err := c.FetchMenus(context.Background(), "merchant")
	if err != nil {
		t.Fatalf("fetch menus: %v", err)
	}
	if len(menus) != 1 || menus[0].Name != "goods" || menus[0].Type != MenuParentView {
		t.Fatalf("unexpected menus: %+v", menus)
	}
	if len(menus[0].Children) != 1 || menus[0].Children[0].RoutePath != "/goods/list" {
		t.Fatalf("unexpected children: %+v", menus[0].Children)
	}
}

func TestUpdateGoods_RequiresIDBeforeRequest(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = io.WriteString(w, `{"code":0}`)
	}))
	defer srv.Close()

	c := NewClient(apiclient.New(srv.URL, time.Second))

	err := c.MerchantUpdateGoods(context.Background(), GoodsPayload{Name: "tea"})
	var ve *apiclient.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := c.AdminUpdateGoods(context.Background(), GoodsItem{}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no request to reach the server, got %d", hits)
	}
}

func TestChatHistory_SendsSessionAndPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sessionId") != "5" || q.Get("page") != "2" || q.Get("pageSize") != "10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"code":0,"data":{"records":[{"sessionId":"5","userId":"u1","content":"hi","type":"text","time":"2024-03-20T10:00:00Z"}],"total":11,"pages":2}}`)
	}))
	defer srv.Close()

	c := NewChatClient(apiclient.New(srv.URL, time.Second))
	res, err := c.History(context.Background(), 5, PageParams{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].SessionID != 5 || res.TotalPages() != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestIDAcceptsNumberAndString(t *testing.T) {
	var s []ChatSession
	if err := json.Unmarshal([]byte(`[{"id":"12"},{"id":13}]`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s[0].ID != 12 || s[1].ID != 13 {
		t.Fatalf("unexpected ids: %+v", s)
	}
}

func TestTotalPagesFallback(t *testing.T) {
	p := PageResult[UnitItem]{Total: 21, PageSize: 10}
	if p.TotalPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPages())
	}
	if (PageResult[UnitItem]{}).TotalPages() != 0 {
		t.Fatalf("expected 0 pages for empty result")
	}
}

func TestOrderStatusInfo(t *testing.T) {
	if OrderPaid.Info().Label != "awaiting shipment" {
		t.Fatalf("unexpected label: %q", OrderPaid.Info().Label)
	}
	if OrderStatus("UNKNOWN").Info().Label != "-" {
		t.Fatalf("unknown status must map to '-'")
	}
	if OrderParent.Label() != "aggregate order" || OrderType("X").Label() != "-" {
		t.Fatalf("unexpected order type labels")
	}
}

func TestCommentPage_SendsReplyFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/comments/page" || q.Get("hasReply") != "false" || q.Get("goodsName") != "tea" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"code":0,"data":{"records":[{"commentId":"c1","orderNo":"O1","rate":4}],"total":1}}`)
	}))
	defer srv.Close()

	no := false
	c := NewClient(apiclient.New(srv.URL, time.Second))
	res, err := c.CommentPage(context.Background(), CommentPageParams{HasReply: &no, GoodsName: "tea"})
	if err != nil {
		t.Fatalf("comment page: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].CommentID != "c1" || res.Records[0].Rate != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestReplyComment_RejectsBlankReply(t *testing.T) {
	c := NewClient(apiclient.New("http://127.0.0.1:1", time.Second))
	var ve *apiclient.ValidationError
	if err := c.ReplyComment(context.Background(), "c1", "  "); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUserProfile_PutsToUserPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/user/u-7/profile" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["nickname"] != "Ann" {
			t.Errorf("unexpected body %v", body)
		}
		if _, ok := body["email"]; ok {
			t.Errorf("unset fields must be omitted: %v", body)
		}
		_, _ = io.WriteString(w, `{"code":0,"data":{"uid":"u-7","nickname":"Ann"}}`)
	}))
	defer srv.Close()

	name := "Ann"
	c := NewClient(apiclient.New(srv.URL, time.Second))
	p, err := c.UpdateUserProfile(context.Background(), "u-7", ProfileUpdate{Nickname: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if p.Nickname != "Ann" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestUpdateStore_PatchesStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/store/s1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"code":0,"data":{"id":"s1","name":"Tea House"}}`)
	}))
	defer srv.Close()

	name := "Tea House"
	c := NewClient(apiclient.New(srv.URL, time.Second))
	s, err := c.UpdateStore(context.Background(), "s1", StoreUpdate{Name: &name})
	if err != nil || s.Name != "Tea House" {
		t.Fatalf("update store: %+v %v", s, err)
	}
	if _, err := c.UpdateStore(context.Background(), "", StoreUpdate{}); err == nil {
		t.Fatalf("expected error for empty store id")
	}
}

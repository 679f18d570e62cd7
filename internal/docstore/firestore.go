// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/erolledph/new-cms/internal/model"
)

// Firestore collection and document names.
const (
	colAccounts  = "accounts"
	colSettings  = "settings"
	docPrefs     = "preferences"
	colSites     = "sites"
	colItems     = "items"
	colFiles     = "files"
	colAnalytics = "analytics"
	colEvents    = "events"
)

// FirebaseCredentials are the service account fields supplied through the
// environment.
type FirebaseCredentials struct {
	ProjectID         string
	PrivateKeyID      string
	PrivateKey        string
	ClientEmail       string
	ClientID          string
	ClientX509CertURL string
}

// JSON renders the credentials as a service account key file.
func (c FirebaseCredentials) JSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":                        "service_account",
		"project_id":                  c.ProjectID,
		"private_key_id":              c.PrivateKeyID,
		"private_key":                 strings.ReplaceAll(c.PrivateKey, `\n`, "\n"),
		"client_email":                c.ClientEmail,
		"client_id":                   c.ClientID,
		"auth_uri":                    "https://accounts.google.com/o/oauth2/auth",
		"token_uri":                   "https://oauth2.googleapis.com/token",
		"auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
		"client_x509_cert_url":        c.ClientX509CertURL,
	})
}

// Firestore is the Store backend for Cloud Firestore. Data lives under
// accounts/{uid}: sites/{siteId}/items/{itemId}, files/{fileId},
// analytics/{siteId}/events/{eventId} and settings/preferences.
type Firestore struct {
	client *firestore.Client
}

// OpenFirestore connects to Firestore with the given service account.
func OpenFirestore(ctx context.Context, creds FirebaseCredentials) (*Firestore, error) {
	key, err := creds.JSON()
	if err != nil {
		return nil, fmt.Errorf("encoding credentials: %w", err)
	}
	client, err := firestore.NewClient(ctx, creds.ProjectID, option.WithCredentialsJSON(key))
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) account(uid string) *firestore.DocumentRef {
	return f.client.Collection(colAccounts).Doc(uid)
}

func (f *Firestore) sites(uid string) *firestore.CollectionRef {
	return f.account(uid).Collection(colSites)
}

func (f *Firestore) items(uid, siteID string) *firestore.CollectionRef {
	return f.sites(uid).Doc(siteID).Collection(colItems)
}

func (f *Firestore) events(uid, siteID string) *firestore.CollectionRef {
	return f.account(uid).Collection(colAnalytics).Doc(siteID).Collection(colEvents)
}

// mapError translates gRPC status codes into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	default:
		return err
	}
}

// QueryItems runs the query against the site's items collection.
func (f *Firestore) QueryItems(ctx context.Context, q Query) ([]Document, error) {
	query := f.items(q.UID, q.SiteID).Query
	for _, flt := range q.Filters {
		query = query.Where(flt.Field, "==", flt.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}

	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// GetItem fetches one item.
func (f *Firestore) GetItem(ctx context.Context, uid, siteID, id string) (Document, error) {
	snap, err := f.items(uid, siteID).Doc(id).Get(ctx)
	if err != nil {
		return Document{}, mapError(err)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// SetItem creates or replaces an item.
func (f *Firestore) SetItem(ctx context.Context, uid, siteID string, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidQuery)
	}
	_, err := f.items(uid, siteID).Doc(doc.ID).Set(ctx, doc.Data)
	return mapError(err)
}

// DeleteItem removes one item; a missing item reports ErrNotFound.
func (f *Firestore) DeleteItem(ctx context.Context, uid, siteID, id string) error {
	_, err := f.items(uid, siteID).Doc(id).Delete(ctx, firestore.Exists)
	return mapError(err)
}

// DeleteItems removes every item of a site with a bulk writer.
func (f *Firestore) DeleteItems(ctx context.Context, uid, siteID string) (int, error) {
	refs, err := f.items(uid, siteID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, mapError(err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := f.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return 0, mapError(err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	var errs []error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, mapError(err))
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}

// CountItems counts a site's items by reading document names only.
func (f *Firestore) CountItems(ctx context.Context, uid, siteID string) (int, error) {
	snaps, err := f.items(uid, siteID).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, mapError(err)
	}
	return len(snaps), nil
}

// GetAccount reads the account document and its preferences.
func (f *Firestore) GetAccount(ctx context.Context, uid string) (*model.Account, error) {
	snap, err := f.account(uid).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	var a model.Account
	if err := snap.DataTo(&a); err != nil {
		return nil, fmt.Errorf("decoding account: %w", err)
	}
	a.UID = uid
	a.Settings = model.DefaultSettings()

	prefs, err := f.account(uid).Collection(colSettings).Doc(docPrefs).Get(ctx)
	switch {
	case status.Code(err) == codes.NotFound:
	case err != nil:
		return nil, mapError(err)
	default:
		if err := prefs.DataTo(&a.Settings); err != nil {
			return nil, fmt.Errorf("decoding settings: %w", err)
		}
	}
	return &a, nil
}

// SetAccount writes the account document and its preferences.
func (f *Firestore) SetAccount(ctx context.Context, a *model.Account) error {
	if _, err := f.account(a.UID).Set(ctx, a); err != nil {
		return mapError(err)
	}
	_, err := f.account(a.UID).Collection(colSettings).Doc(docPrefs).Set(ctx, a.Settings)
	return mapError(err)
}

// ListAccounts returns every account.
func (f *Firestore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	snaps, err := f.client.Collection(colAccounts).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}
	accounts := make([]model.Account, 0, len(snaps))
	for _, snap := range snaps {
		var a model.Account
		if err := snap.DataTo(&a); err != nil {
			return nil, fmt.Errorf("decoding account %s: %w", snap.Ref.ID, err)
		}
		a.UID = snap.Ref.ID
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// ListSites returns an account's sites in creation order.
func (f *Firestore) ListSites(ctx context.Context, uid string, kind model.SiteKind) ([]model.Site, error) {
	query := f.sites(uid).Query
	if kind != "" {
		query = query.Where("type", "==", string(kind))
	}
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}

	sites := make([]model.Site, 0, len(snaps))
	for _, snap := range snaps {
		var s model.Site
		if err := snap.DataTo(&s); err != nil {
			return nil, fmt.Errorf("decoding site %s: %w", snap.Ref.ID, err)
		}
		s.ID, s.UID = snap.Ref.ID, uid
		sites = append(sites, s)
	}
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].CreatedAt.Before(sites[j].CreatedAt) })
	return sites, nil
}

// GetSite reads one site.
func (f *Firestore) GetSite(ctx context.Context, uid, siteID string) (*model.Site, error) {
	snap, err := f.sites(uid).Doc(siteID).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	var s model.Site
	if err := snap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("decoding site: %w", err)
	}
	s.ID, s.UID = siteID, uid
	return &s, nil
}

// SetSite creates or replaces a site.
func (f *Firestore) SetSite(ctx context.Context, s *model.Site) error {
	_, err := f.sites(s.UID).Doc(s.ID).Set(ctx, s)
	return mapError(err)
}

// DeleteSite removes the site document.
func (f *Firestore) DeleteSite(ctx context.Context, uid, siteID string) error {
	_, err := f.sites(uid).Doc(siteID).Delete(ctx, firestore.Exists)
	return mapError(err)
}

// SetFile creates or replaces a file record.
func (f *Firestore) SetFile(ctx context.Context, file *model.File) error {
	_, err := f.account(file.UID).Collection(colFiles).Doc(file.ID).Set(ctx, file)
	return mapError(err)
}

// GetFile reads one file record.
func (f *Firestore) GetFile(ctx context.Context, uid, id string) (*model.File, error) {
	snap, err := f.account(uid).Collection(colFiles).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	var file model.File
	if err := snap.DataTo(&file); err != nil {
		return nil, fmt.Errorf("decoding file: %w", err)
	}
	file.ID, file.UID = id, uid
	return &file, nil
}

// ListFiles returns an account's files, newest first.
func (f *Firestore) ListFiles(ctx context.Context, uid string) ([]model.File, error) {
	snaps, err := f.account(uid).Collection(colFiles).OrderBy("uploadedAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}
	files := make([]model.File, 0, len(snaps))
	for _, snap := range snaps {
		var file model.File
		if err := snap.DataTo(&file); err != nil {
			return nil, fmt.Errorf("decoding file %s: %w", snap.Ref.ID, err)
		}
		file.ID, file.UID = snap.Ref.ID, uid
		files = append(files, file)
	}
	return files, nil
}

// DeleteFile removes a file record.
func (f *Firestore) DeleteFile(ctx context.Context, uid, id string) error {
	_, err := f.account(uid).Collection(colFiles).Doc(id).Delete(ctx, firestore.Exists)
	return mapError(err)
}

// AddEvent appends an analytics event.
func (f *Firestore) AddEvent(ctx context.Context, e *model.AnalyticsEvent) error {
	_, err := f.events(e.UID, e.SiteID).Doc(e.ID).Set(ctx, e)
	return mapError(err)
}

// ListEvents returns events of one site, or of every site of the account.
func (f *Firestore) ListEvents(ctx context.Context, uid, siteID string) ([]model.AnalyticsEvent, error) {
	siteIDs := []string{siteID}
	if siteID == "" {
		sites, err := f.ListSites(ctx, uid, "")
		if err != nil {
			return nil, err
		}
		siteIDs = siteIDs[:0]
		for _, s := range sites {
			siteIDs = append(siteIDs, s.ID)
		}
	}

	var events []model.AnalyticsEvent
	for _, id := range siteIDs {
		snaps, err := f.events(uid, id).OrderBy("timestamp", firestore.Asc).Documents(ctx).GetAll()
		if err != nil {
			return nil, mapError(err)
		}
		for _, snap := range snaps {
			var e model.AnalyticsEvent
			if err := snap.DataTo(&e); err != nil {
				return nil, fmt.Errorf("decoding event %s: %w", snap.Ref.ID, err)
			}
			e.ID, e.UID, e.SiteID = snap.Ref.ID, uid, id
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}

// Ping performs a minimal read to verify connectivity and credentials.
func (f *Firestore) Ping(ctx context.Context) error {
	_, err := f.client.Collection(colAccounts).Limit(1).Documents(ctx).GetAll()
	return mapError(err)
}

// Close closes the client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

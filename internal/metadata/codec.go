package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/practicehq/calendar-backend/internal/model"
	"go.uber.org/zap"
)

// Codec converts between typed event metadata and the persisted property
// bag. Decoding is total: every bag, however malformed, decodes to some
// valid kind so the caller can always render. Encoding overlays onto the
// previous bag when one is supplied, preserving X- keys outside the
// vocabulary byte for byte.
type Codec struct {
	logger    *zap.SugaredLogger
	createdBy string
}

func NewCodec(logger *zap.SugaredLogger, createdBy string) *Codec {
	return &Codec{
		logger:    logger,
		createdBy: createdBy,
	}
}

// Normalize coerces a raw metadata value from the store into a bag. Older
// records sometimes persist the bag as a JSON-encoded string; a string that
// fails to parse yields an empty bag rather than an error.
func (c *Codec) Normalize(raw interface{}) model.Properties {
	switch v := raw.(type) {
	case nil:
		return model.Properties{}
	case model.Properties:
		return v
	case map[string]interface{}:
		return model.Properties(v)
	case json.RawMessage:
		return c.parseBag(v)
	case []byte:
		return c.parseBag(v)
	case string:
		return c.parseBag([]byte(v))
	default:
		c.logger.Warnw("metadata has unexpected shape, treating as empty", "type", fmt.Sprintf("%T", raw))
		return model.Properties{}
	}
}

func (c *Codec) parseBag(data []byte) model.Properties {
	var bag map[string]interface{}
	if err := json.Unmarshal(data, &bag); err != nil {
		c.logger.Warnw("metadata is not valid JSON, treating as empty", "err", err)
		return model.Properties{}
	}
	return bag
}

// Decode resolves the bag into the typed metadata record. Legacy un-prefixed
// fields are migrated here, at the boundary; consumers downstream only ever
// see the canonical record.
func (c *Codec) Decode(bag model.Properties) *model.EventMeta {
	kind := Classify(bag)
	if _, hasCanonical := bag[PropEventType]; !hasCanonical {
		if _, hasLegacy := bag[legacyEventType]; hasLegacy {
			c.logger.Debugw("metadata decode fell back to legacy eventType", "kind", kind)
		} else if len(bag) != 0 {
			c.logger.Debugw("metadata has no event type, defaulting to STANDARD")
		}
	}

	meta := &model.EventMeta{
		Kind:  kind,
		Extra: extraProperties(bag),
	}

	if kind.IncludesSMS() || kind.IncludesEmail() {
		meta.Broadcast = c.decodeBroadcast(bag, kind)
	}
	if kind == model.KindPublicBooking {
		meta.Booking = c.decodeBooking(bag)
	}

	return meta
}

func (c *Codec) decodeBroadcast(bag model.Properties, kind model.EventKind) *model.BroadcastSpec {
	legacy := legacyBroadcast(bag)

	spec := &model.BroadcastSpec{
		SelectedClientIDs: c.stringSlice(bag, legacy, PropSelectedClientIDs, "selectedClientIds"),
		RecipientListID:   c.lookupString(bag, legacy, PropSMSRecipientList, "recipientListId"),
		UseAlphaID:        c.lookupBool(bag, legacy, PropUseAlphaID, "useAlphaId"),
		Status:            model.BroadcastStatus(c.lookupString(bag, legacy, PropBroadcastStatus, "status")),
		SentCount:         c.lookupInt(bag, legacy, PropBroadcastSentCount, "sentCount"),
	}

	if spec.RecipientListID == "" {
		spec.RecipientListID = c.lookupString(bag, legacy, PropEmailRecipientList, "recipientListId")
	}

	if kind.IncludesSMS() {
		spec.SMSContent = c.lookupString(bag, legacy, PropSMSContent, "smsContent")
		spec.SMSTemplateID = c.lookupString(bag, legacy, PropSMSTemplateID, "smsTemplateId")
	}
	if kind.IncludesEmail() {
		spec.EmailSubject = c.lookupString(bag, legacy, PropEmailSubject, "emailSubject")
		spec.EmailContent = c.lookupString(bag, legacy, PropEmailContent, "emailContent")
		spec.EmailTemplateID = c.lookupString(bag, legacy, PropEmailTemplateID, "emailTemplateId")
	}

	if raw := c.lookupString(bag, legacy, PropBroadcastScheduled, "scheduledSendTime"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.logger.Warnw("invalid broadcast schedule time, dropping", "value", raw, "err", err)
		} else {
			spec.ScheduledSendTime = &ts
		}
	}

	return spec
}

func (c *Codec) decodeBooking(bag model.Properties) *model.BookingRecord {
	return &model.BookingRecord{
		BookerName:             stringValue(bag[PropBookerName]),
		BookerEmail:            stringValue(bag[PropBookerEmail]),
		BookerPhone:            stringValue(bag[PropBookerPhone]),
		BookerTimezone:         stringValue(bag[PropBookerTimezone]),
		BookingStatus:          model.BookingStatus(stringValue(bag[PropBookingStatus])),
		PaymentStatus:          model.PaymentStatus(stringValue(bag[PropPaymentStatus])),
		PaymentAmountMinorUnit: intValue(bag[PropPaymentAmount]),
		PaymentCurrency:        stringValue(bag[PropPaymentCurrency]),
		MeetingLink:            stringValue(bag[PropMeetingLink]),
		BookingToken:           stringValue(bag[PropBookingToken]),
		LinkedProjectID:        stringValue(bag[PropProjectID]),
		CustomAnswers:          decodeAnswers(bag),
	}
}

func decodeAnswers(bag model.Properties) []model.CustomAnswer {
	var indexes []int
	for key := range bag {
		if !strings.HasPrefix(key, propBookingQuestionPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, propBookingQuestionPrefix))
		if err != nil {
			continue
		}
		indexes = append(indexes, n)
	}
	if len(indexes) == 0 {
		return nil
	}
	sort.Ints(indexes)

	res := make([]model.CustomAnswer, 0, len(indexes))
	for _, n := range indexes {
		res = append(res, model.CustomAnswer{
			Question: stringValue(bag[propBookingQuestion(n)]),
			Answer:   stringValue(bag[propBookingAnswer(n)]),
		})
	}
	return res
}

// Encode produces the bag to persist. The update path supplies the event's
// current bag as base so foreign X- keys survive the overwrite; the create
// path supplies nil. Dispatcher instructions are re-derived from the kind on
// every encode, never read back from the base.
func (c *Codec) Encode(meta *model.EventMeta, base model.Properties) model.Properties {
	bag := base.Copy()

	if meta == nil {
		meta = &model.EventMeta{Kind: model.KindStandard}
	}
	kind := meta.Kind
	if !kind.Valid() {
		kind = model.KindStandard
	}

	for key, value := range meta.Extra {
		if _, ok := bag[key]; !ok {
			bag[key] = value
		}
	}

	// Clear the owned vocabulary and legacy shapes, then write back from the
	// typed record. Gated blocks below stay absent when their gate is shut.
	for key := range bag {
		if inVocabulary(key) {
			delete(bag, key)
		}
	}
	delete(bag, legacyEventType)
	delete(bag, legacyBroadcastData)

	bag[PropEventType] = string(kind)
	bag[PropCreatedBy] = c.createdBy
	bag[PropICalVersion] = ICalVersion

	if spec := meta.Broadcast; spec != nil {
		c.encodeBroadcast(bag, kind, spec)
	}

	if kind == model.KindICalInvite {
		bag[PropSendICalInvites] = "true"
		bag[PropICalMethod] = string(model.MethodRequest)
	}

	if kind == model.KindPublicBooking && meta.Booking != nil {
		encodeBooking(bag, meta.Booking)
	}

	return bag
}

func (c *Codec) encodeBroadcast(bag model.Properties, kind model.EventKind, spec *model.BroadcastSpec) {
	// An empty content field must not create a partially formed broadcast.
	if kind.IncludesSMS() && spec.SMSContent != "" {
		bag[PropSMSContent] = spec.SMSContent
		bag[PropSMSRecipientList] = spec.RecipientListID
		bag[PropSelectedClientIDs] = append([]string(nil), spec.SelectedClientIDs...)
		bag[PropUseAlphaID] = spec.UseAlphaID
		if spec.SMSTemplateID != "" {
			bag[PropSMSTemplateID] = spec.SMSTemplateID
		}
	}

	if kind.IncludesEmail() && spec.EmailSubject != "" {
		bag[PropEmailSubject] = spec.EmailSubject
		bag[PropEmailContent] = spec.EmailContent
		bag[PropEmailRecipientList] = spec.RecipientListID
		bag[PropSelectedClientIDs] = append([]string(nil), spec.SelectedClientIDs...)
		if spec.EmailTemplateID != "" {
			bag[PropEmailTemplateID] = spec.EmailTemplateID
		}
	}

	if spec.ScheduledSendTime != nil {
		bag[PropBroadcastScheduled] = spec.ScheduledSendTime.Format(time.RFC3339)
	}

	if spec.Status != "" {
		bag[PropBroadcastStatus] = string(spec.Status)
		bag[PropBroadcastSentCount] = spec.SentCount
	}
}

func setString(bag model.Properties, key, value string) {
	if value != "" {
		bag[key] = value
	}
}

func encodeBooking(bag model.Properties, rec *model.BookingRecord) {
	setString(bag, PropBookerName, rec.BookerName)
	setString(bag, PropBookerEmail, rec.BookerEmail)
	setString(bag, PropBookerPhone, rec.BookerPhone)
	setString(bag, PropBookerTimezone, rec.BookerTimezone)
	setString(bag, PropBookingStatus, string(rec.BookingStatus))
	setString(bag, PropPaymentStatus, string(rec.PaymentStatus))
	setString(bag, PropPaymentCurrency, rec.PaymentCurrency)
	setString(bag, PropMeetingLink, rec.MeetingLink)
	setString(bag, PropBookingToken, rec.BookingToken)
	setString(bag, PropProjectID, rec.LinkedProjectID)
	bag[PropPaymentAmount] = rec.PaymentAmountMinorUnit
	for i, qa := range rec.CustomAnswers {
		bag[propBookingQuestion(i+1)] = qa.Question
		bag[propBookingAnswer(i+1)] = qa.Answer
	}
}

// extraProperties keeps X- keys the current codec version does not
// understand, so they survive a decode/re-encode cycle.
func extraProperties(bag model.Properties) model.Properties {
	extra := model.Properties{}
	for key, value := range bag {
		if strings.HasPrefix(key, "X-") && !inVocabulary(key) {
			extra[key] = value
		}
	}
	return extra
}

func legacyBroadcast(bag model.Properties) map[string]interface{} {
	legacy, _ := bag[legacyBroadcastData].(map[string]interface{})
	return legacy
}

func (c *Codec) lookupString(bag model.Properties, legacy map[string]interface{}, key, legacyKey string) string {
	if v, ok := bag[key]; ok {
		return stringValue(v)
	}
	if v, ok := legacy[legacyKey]; ok {
		c.logger.Debugw("metadata decode fell back to legacy broadcast field", "field", legacyKey)
		return stringValue(v)
	}
	return ""
}

func (c *Codec) lookupBool(bag model.Properties, legacy map[string]interface{}, key, legacyKey string) bool {
	if v, ok := bag[key]; ok {
		return boolValue(v)
	}
	if v, ok := legacy[legacyKey]; ok {
		c.logger.Debugw("metadata decode fell back to legacy broadcast field", "field", legacyKey)
		return boolValue(v)
	}
	return false
}

func (c *Codec) lookupInt(bag model.Properties, legacy map[string]interface{}, key, legacyKey string) int {
	if v, ok := bag[key]; ok {
		return int(intValue(v))
	}
	if v, ok := legacy[legacyKey]; ok {
		c.logger.Debugw("metadata decode fell back to legacy broadcast field", "field", legacyKey)
		return int(intValue(v))
	}
	return 0
}

func (c *Codec) stringSlice(bag model.Properties, legacy map[string]interface{}, key, legacyKey string) []string {
	if v, ok := bag[key]; ok {
		return stringSliceValue(v)
	}
	if v, ok := legacy[legacyKey]; ok {
		c.logger.Debugw("metadata decode fell back to legacy broadcast field", "field", legacyKey)
		return stringSliceValue(v)
	}
	return nil
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func boolValue(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

func intValue(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func stringSliceValue(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return append([]string(nil), vals...)
	case []interface{}:
		res := make([]string, 0, len(vals))
		for _, el := range vals {
			res = append(res, stringValue(el))
		}
		return res
	default:
		return nil
	}
}


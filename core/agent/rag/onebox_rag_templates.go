package rag

import "github.com/18vikastg/onebox/core/domain"

// BuiltinTemplates returns the default reply library.
func BuiltinTemplates() []domain.ReplyTemplateEntry {
	return []domain.ReplyTemplateEntry{
		{
			ScenarioID:     "job_interview_invitation",
			PatternText:    "shortlisted, technical interview, when available, schedule, time slot",
			Context:        "Professional job application response with calendar booking",
			TemplateBody:   "Thank you for shortlisting my profile! I'm excited about this opportunity. I'm available for a technical interview and would be happy to schedule it at your convenience. You can book a slot directly here: {calendar_link}\n\nLooking forward to discussing my qualifications further.\n\nBest regards,\n{name}",
			Category:       "job_application",
			Urgency:        domain.UrgencyHigh,
			BaseConfidence: 0.9,
		},
		{
			ScenarioID:     "assignment_submission_request",
			PatternText:    "assignment, deadline, submission, demo video, features, github",
			Context:        "Assignment acknowledgment and commitment response",
			TemplateBody:   "Thank you for providing the assignment details! I've carefully reviewed the requirements and am working on implementing all the specified features.\n\nI will ensure to:\n- Complete all required functionalities\n- Provide comprehensive documentation\n- Include a detailed demo video\n- Submit via GitHub repository\n\nI'm committed to delivering high-quality work before the deadline.\n\nBest regards,\n{name}",
			Category:       "job_application",
			Urgency:        domain.UrgencyHigh,
			BaseConfidence: 0.9,
		},
		{
			ScenarioID:     "job_rejection_response",
			PatternText:    "not selected, unfortunately, decided to proceed, another candidate",
			Context:        "Professional and gracious job rejection response",
			TemplateBody:   "Thank you for informing me about your decision. While I'm disappointed, I appreciate the opportunity to have been considered for this position.\n\nI enjoyed learning about your team and the role. If any similar opportunities arise in the future, I would be very interested to hear from you.\n\nThank you again for your time and consideration.\n\nBest regards,\n{name}",
			Category:       "job_application",
			Urgency:        domain.UrgencyLow,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "project_collaboration",
			PatternText:    "collaboration, project, team, work together, partnership",
			Context:        "Professional collaboration and project discussion",
			TemplateBody:   "Thank you for reaching out about this collaboration opportunity! I'm very interested in working together on this project.\n\nI'd love to discuss:\n- Project scope and requirements\n- Timeline and deliverables\n- Technical stack and methodologies\n- Communication and collaboration processes\n\nWould you be available for a brief call to discuss this further? You can schedule a convenient time here: {calendar_link}\n\nLooking forward to our collaboration!\n\nBest regards,\n{name}",
			Category:       "collaboration",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "business_inquiry_response",
			PatternText:    "interested in services, pricing, proposal, quotation, business",
			Context:        "Professional business inquiry response",
			TemplateBody:   "Thank you for your interest in my services! I'm excited about the possibility of working with you.\n\nI'd be happy to discuss your requirements in detail and provide a customized proposal. Could we schedule a brief call to understand your needs better?\n\nYou can book a convenient time here: {calendar_link}\n\nI look forward to hearing from you!\n\nBest regards,\n{name}",
			Category:       "business",
			Urgency:        domain.UrgencyHigh,
			BaseConfidence: 0.9,
		},
		{
			ScenarioID:     "meeting_reschedule_request",
			PatternText:    "reschedule, postpone, change time, different slot, unavailable",
			Context:        "Professional and accommodating rescheduling response",
			TemplateBody:   "Thank you for letting me know about the schedule change. I completely understand and am flexible with the timing.\n\nI'm available for rescheduling and you can choose a new time slot that works best for you here: {calendar_link}\n\nPlease feel free to pick any convenient time, and I'll adjust my schedule accordingly.\n\nThank you for your understanding!\n\nBest regards,\n{name}",
			Category:       "scheduling",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "meeting_confirmation",
			PatternText:    "meeting confirmed, see you, looking forward, agenda",
			Context:        "Meeting confirmation acknowledgment",
			TemplateBody:   "Thank you for confirming our meeting! I'm looking forward to our discussion.\n\nI've noted the time in my calendar and will be well-prepared for our conversation. If you have any specific agenda items you'd like me to review beforehand, please let me know.\n\nSee you soon!\n\nBest regards,\n{name}",
			Category:       "scheduling",
			Urgency:        domain.UrgencyLow,
			BaseConfidence: 0.7,
		},
		{
			ScenarioID:     "technical_question",
			PatternText:    "technical question, how to, implementation, code, development",
			Context:        "Helpful technical assistance response",
			TemplateBody:   "Thank you for your technical question! I'd be happy to help you with this.\n\nBased on your description, here are a few approaches you could consider:\n\n1. [I'll provide specific technical guidance based on the question]\n2. [Alternative solutions if applicable]\n\nIf you'd like to discuss this in more detail or need hands-on assistance, feel free to schedule a call: {calendar_link}\n\nHappy coding!\n\nBest regards,\n{name}",
			Category:       "technical",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "code_review_request",
			PatternText:    "code review, pull request, feedback on code, review my",
			Context:        "Code review acceptance response",
			TemplateBody:   "Thank you for asking me to review your code! I'd be happy to take a look and provide feedback.\n\nPlease share the repository link or code files, and I'll review:\n- Code structure and best practices\n- Performance optimizations\n- Potential improvements\n- Documentation suggestions\n\nI'll aim to provide detailed feedback within 24-48 hours.\n\nBest regards,\n{name}",
			Category:       "technical",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "feedback_request_response",
			PatternText:    "feedback, review, comments, suggestions, improvement",
			Context:        "Grateful and professional feedback request acknowledgment",
			TemplateBody:   "Thank you for offering to provide feedback! I greatly value your insights and would appreciate any comments or suggestions you might have.\n\nYour expertise would be invaluable in helping me improve, and I'm open to:\n- Technical feedback and code review\n- Process improvements\n- Best practices recommendations\n- Any other suggestions\n\nIf you'd prefer to discuss this over a call, feel free to schedule a time here: {calendar_link}\n\nThank you for your time and support!\n\nBest regards,\n{name}",
			Category:       "feedback",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "positive_feedback_response",
			PatternText:    "great job, excellent work, impressed, well done, congratulations",
			Context:        "Grateful response to positive feedback",
			TemplateBody:   "Thank you so much for your kind words! I really appreciate the positive feedback.\n\nIt was a pleasure working on this project, and I'm glad the results met your expectations. Your support and clear communication made the process smooth and enjoyable.\n\nI look forward to future opportunities to collaborate!\n\nBest regards,\n{name}",
			Category:       "feedback",
			Urgency:        domain.UrgencyLow,
			BaseConfidence: 0.7,
		},
		{
			ScenarioID:     "introduction_email",
			PatternText:    "introduction, nice to meet, connect, networking, mutual",
			Context:        "Professional networking introduction response",
			TemplateBody:   "Thank you for the introduction! It's great to connect with you.\n\nI'd love to learn more about your work and explore potential areas where we might collaborate. Would you be open to a brief call to get to know each other better?\n\nYou can schedule a convenient time here: {calendar_link}\n\nLooking forward to our conversation!\n\nBest regards,\n{name}",
			Category:       "networking",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.7,
		},
		{
			ScenarioID:     "thank_you_response",
			PatternText:    "thank you, thanks, grateful, appreciate",
			Context:        "Simple acknowledgment of thanks",
			TemplateBody:   "You're very welcome! I'm glad I could help.\n\nIf you need any further assistance or have additional questions, please don't hesitate to reach out. I'm always happy to help.\n\nBest regards,\n{name}",
			Category:       "general",
			Urgency:        domain.UrgencyLow,
			BaseConfidence: 0.6,
		},
		{
			ScenarioID:     "event_invitation",
			PatternText:    "event, invitation, conference, workshop, seminar, join us",
			Context:        "Professional event invitation response",
			TemplateBody:   "Thank you for the invitation! This event sounds very interesting and relevant to my work.\n\nI would love to attend if my schedule permits. Could you please share more details about:\n- Date and time\n- Location or virtual link\n- Agenda or topics covered\n- Registration process\n\nI look forward to participating!\n\nBest regards,\n{name}",
			Category:       "events",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "training_opportunity",
			PatternText:    "training, course, workshop, skill development, learning",
			Context:        "Training opportunity interest response",
			TemplateBody:   "Thank you for sharing this training opportunity! Continuous learning is very important to me, and this looks like a valuable program.\n\nI'm interested in participating. Could you provide more information about:\n- Course curriculum and duration\n- Schedule and time commitment\n- Prerequisites or requirements\n- Registration process\n\nI appreciate you thinking of me for this opportunity!\n\nBest regards,\n{name}",
			Category:       "education",
			Urgency:        domain.UrgencyMedium,
			BaseConfidence: 0.8,
		},
		{
			ScenarioID:     "help_request",
			PatternText:    "help, assistance, support, problem, issue, stuck",
			Context:        "Helpful support request response",
			TemplateBody:   "I'd be happy to help you with this! Let me take a look at your situation.\n\nTo better assist you, could you provide a bit more detail about:\n- What you're trying to achieve\n- What steps you've already tried\n- Any error messages you're seeing\n- Your current setup or environment\n\nOnce I understand the context better, I can provide more targeted assistance.\n\nBest regards,\n{name}",
			Category:       "support",
			Urgency:        domain.UrgencyHigh,
			BaseConfidence: 0.9,
		},
	}
}

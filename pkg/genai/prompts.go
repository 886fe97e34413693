package genai

import (
	"fmt"
)

// buildOptimizePrompt creates the ATS optimization prompt. The model must
// answer with strict JSON holding exactly the summary, skills and projects
// replacement texts.
func buildOptimizePrompt(resumeText, jobText, projectLibrary string) (prompt string) {
	prompt = fmt.Sprintf(`You are an advanced Resume Enhancement Assistant specialized in ATS (Applicant Tracking System) optimization.

Your task: Update and optimize the provided resume (.docx text) so that it achieves a 100%% match with the provided Job Description (JD) in terms of ATS keyword alignment, relevance, and phrasing.

------------------
STRICT RULES:
------------------
1) Formatting & Structure
- The final Word document must keep the original formatting, section order, headings, bullet points, font styles, and layout.
- Do not add new sections or change section order.
- Do not modify Work Experience, Education, or Achievements.

2) Sections to Rewrite
- Rewrite ONLY these sections:
  - SUMMARY
  - SKILLS
  - PROJECT EXPERIENCE

3) Keyword & ATS Optimization
- Extract ALL critical keywords, skills, tools, and qualifications from the Job Description.
- Seamlessly integrate these keywords into SKILLS and PROJECT EXPERIENCE.
- Include exact technical keywords verbatim when appropriate (e.g., SQL, Python, Tableau, Azure, Databricks, DataOps, ETL, EHR, ML models, KPIs).

4) Content Enhancement
- Rewrite PROJECT EXPERIENCE bullets using strong action verbs + measurable outcomes.
- Emphasize business impact, scalability, and data-driven decision-making.
- Keep bullets concise (5 lines or fewer each) and ATS-friendly.

5) Intelligent Insertions (No Fabrication)
- If the JD emphasizes tools/skills logically aligned with the candidate's background (e.g., MLOps, Azure Databricks, Healthcare Analytics, Cloud Data Pipelines), insert them naturally into SKILLS and PROJECT EXPERIENCE.
- Do NOT invent fake jobs, employers, or degrees. Only enhance existing projects and skills.

6) Output Format (CRITICAL)
- Return STRICT JSON ONLY with exactly these keys:
  - "summary": string
  - "skills": string
              - Organize skills into 3-8 CATEGORY bullets (flexible). You MAY create new categories when appropriate.
              - Each bullet: start with a bullet glyph, then CATEGORY name, then a colon, then a comma-separated list of tools/skills.
              - End each category with ". "
              - If an item does not fit an existing category, create a new appropriate category.
              - Do NOT break every individual tool into its own bullet.
  - "projects": string
              - Select the TOP 3 projects from the PROJECT LIBRARY that best match the job description.
              - Ignore irrelevant projects.
              - Exactly 3 projects unless fewer are available.
              - Each project must start with its TITLE in ALL CAPS (or Title Case).
              - After the title, all responsibilities/achievements must be written as bullet points.
              - Each bullet must begin with a bullet glyph followed by a tab or space.
              - Do not write responsibilities as plain paragraphs, only bulleted lists.
- No extra commentary or markdown. JSON only.

------------------
RESUME:
%s

------------------
PROJECT LIBRARY (all projects you can choose from):
%s

------------------
JOB DESCRIPTION:
%s

OUTPUT JSON FORMAT:
{
  "summary": "...",
  "skills": "...",
  "projects": "..."
}`, resumeText, projectLibrary, jobText)

	return prompt
}
